package model

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
}

func (d *userDocument) toUser() *User {
	return &User{ID: d.ID.Hex(), Email: d.Email, Password: d.Password}
}

// fileDocument keeps userId as an ObjectID and parentId as either the string
// "0" or an ObjectID hex string, the layout the files collection always had.
type fileDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	Name      string             `bson:"name"`
	Type      FileType           `bson:"type"`
	IsPublic  bool               `bson:"isPublic"`
	ParentID  string             `bson:"parentId"`
	LocalPath string             `bson:"localPath,omitempty"`
}

func (d *fileDocument) toFile() *File {
	return &File{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Name:      d.Name,
		Type:      d.Type,
		IsPublic:  d.IsPublic,
		ParentID:  d.ParentID,
		LocalPath: d.LocalPath,
	}
}

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	files  *mongo.Collection
}

// NewMongoStore connects to uri and prepares the users and files collections.
func NewMongoStore(ctx context.Context, uri string, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		users:  db.Collection("users"),
		files:  db.Collection("files"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users.email index: %w", err)
	}
	_, err = s.files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create files.userId index: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) CreateUser(ctx context.Context, user *User) error {
	doc := userDocument{ID: primitive.NewObjectID(), Email: user.Email, Password: user.Password}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toUser(), nil
}

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	return s.users.CountDocuments(ctx, bson.M{})
}

func (s *MongoStore) CreateFile(ctx context.Context, file *File) error {
	userOID, err := primitive.ObjectIDFromHex(file.UserID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", file.UserID, err)
	}
	doc := fileDocument{
		ID:        primitive.NewObjectID(),
		UserID:    userOID,
		Name:      file.Name,
		Type:      file.Type,
		IsPublic:  file.IsPublic,
		ParentID:  file.ParentID,
		LocalPath: file.LocalPath,
	}
	if _, err := s.files.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	file.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) ownedFileFilter(userID, fileID string) (bson.M, bool) {
	fileOID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, false
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": fileOID, "userId": userOID}, true
}

func (s *MongoStore) GetFile(ctx context.Context, userID, fileID string) (*File, error) {
	filter, ok := s.ownedFileFilter(userID, fileID)
	if !ok {
		return nil, ErrNotFound
	}
	return s.findFile(ctx, filter)
}

func (s *MongoStore) GetFileByID(ctx context.Context, fileID string) (*File, error) {
	oid, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findFile(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findFile(ctx context.Context, filter bson.M) (*File, error) {
	var doc fileDocument
	if err := s.files.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return doc.toFile(), nil
}

func (s *MongoStore) ListFiles(ctx context.Context, userID, parentID string, page, pageSize int) ([]*File, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*File{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(page * pageSize)).
		SetLimit(int64(pageSize))
	cursor, err := s.files.Find(ctx, bson.M{"userId": userOID, "parentId": parentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	var docs []fileDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	files := make([]*File, 0, len(docs))
	for i := range docs {
		files = append(files, docs[i].toFile())
	}
	return files, nil
}

func (s *MongoStore) SetFilePublic(ctx context.Context, userID, fileID string, public bool) (*File, error) {
	filter, ok := s.ownedFileFilter(userID, fileID)
	if !ok {
		return nil, ErrNotFound
	}
	var doc fileDocument
	err := s.files.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"isPublic": public}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update file: %w", err)
	}
	return doc.toFile(), nil
}

func (s *MongoStore) CountFiles(ctx context.Context) (int64, error) {
	return s.files.CountDocuments(ctx, bson.M{})
}
