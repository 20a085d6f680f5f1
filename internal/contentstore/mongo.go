package contentstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"notedeck/config"
	"notedeck/internal/logger"
)

// mongoDocument MongoDB侧的文档形态，以content_ref作为_id主键
type mongoDocument struct {
	Ref        string    `bson:"_id"`
	Title      string    `bson:"title"`
	Content    string    `bson:"content"`
	UserID     uint      `bson:"user_id"`
	NotebookID uint      `bson:"notebook_id"`
	IsTrashed  bool      `bson:"is_trashed"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// MongoStore 基于MongoDB的内容文档存储
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore 连接MongoDB并创建内容存储实例
func NewMongoStore(ctx context.Context, cfg config.ContentStoreConfig) (*MongoStore, error) {
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Infof("Content store connected: mongodb database=%s collection=%s", cfg.Database, cfg.Collection)

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Init 以完整文档初始化内容记录，已存在时整体覆盖
func (s *MongoStore) Init(ctx context.Context, ref string, doc NoteDocument) error {
	now := time.Now()
	record := mongoDocument{
		Ref:        ref,
		Title:      doc.Title,
		Content:    doc.Content,
		UserID:     doc.UserID,
		NotebookID: doc.NotebookID,
		IsTrashed:  doc.IsTrashed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": ref}, record, opts); err != nil {
		return fmt.Errorf("failed to init content document: %w", err)
	}
	return nil
}

// Save 合并更新内容记录，记录不存在时自动初始化
func (s *MongoStore) Save(ctx context.Context, ref string, update DocumentUpdate) error {
	now := time.Now()
	set := bson.M{"updated_at": now}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Content != nil {
		set["content"] = *update.Content
	}
	if update.NotebookID != nil {
		set["notebook_id"] = *update.NotebookID
	}
	if update.IsTrashed != nil {
		set["is_trashed"] = *update.IsTrashed
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": ref}, bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}, opts)
	if err != nil {
		return fmt.Errorf("failed to save content document: %w", err)
	}
	return nil
}

// Get 获取内容记录，不存在时返回ErrDocumentNotFound
func (s *MongoStore) Get(ctx context.Context, ref string) (*NoteDocument, error) {
	var record mongoDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": ref}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content document: %w", err)
	}

	return &NoteDocument{
		Title:      record.Title,
		Content:    record.Content,
		UserID:     record.UserID,
		NotebookID: record.NotebookID,
		IsTrashed:  record.IsTrashed,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}, nil
}

// Delete 删除内容记录，不存在时不报错
func (s *MongoStore) Delete(ctx context.Context, ref string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": ref}); err != nil {
		return fmt.Errorf("failed to delete content document: %w", err)
	}
	return nil
}

// Close 断开MongoDB连接
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
