package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/goserg/devconnector/auth/users"
	"github.com/goserg/devconnector/internal/domain"
	"github.com/goserg/devconnector/internal/storage"
)

type Config struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

type Storage struct {
	client   *mongo.Client
	users    *mongo.Collection
	profiles *mongo.Collection
	log      *logrus.Entry
}

var _ storage.Storage = (*Storage)(nil)

func New(ctx context.Context, l *logrus.Logger, config Config) (*Storage, error) {
	log := l.WithField("from", "mongo-storage")
	client, err := mongo.Connect(options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Join(err, client.Disconnect(ctx))
	}

	db := client.Database(config.Database)
	s := &Storage{
		client:   client,
		users:    db.Collection("users"),
		profiles: db.Collection("profiles"),
		log:      log,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, errors.Join(err, client.Disconnect(ctx))
	}
	log.WithField("db", config.Database).Info("storage connected")
	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Storage) CreateUser(ctx context.Context, user users.User, secret users.Secret) (users.User, error) {
	doc := userDocument{
		ID:       bson.NewObjectID(),
		Name:     user.Name,
		Email:    user.Email,
		Password: secret.PasswordHash,
		Avatar:   user.Avatar,
		Date:     user.RegisteredAt,
	}
	_, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return users.User{}, storage.ErrUserExists
		}
		return users.User{}, err
	}
	return doc.toModel(), nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (users.User, users.Secret, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return users.User{}, users.Secret{}, storage.ErrNotFound
		}
		return users.User{}, users.Secret{}, err
	}
	return doc.toModel(), users.Secret{PasswordHash: doc.Password}, nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (users.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return users.User{}, storage.ErrNotFound
	}
	var doc userDocument
	err = s.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return users.User{}, storage.ErrNotFound
		}
		return users.User{}, err
	}
	return doc.toModel(), nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}
	res, err := s.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// withOwner joins profiles to their users. Profiles whose user is gone
// drop out at the unwind stage.
func withOwner(match bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: "$owner"}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func (s *Storage) findProfiles(ctx context.Context, match bson.D) ([]domain.Profile, error) {
	cursor, err := s.profiles.Aggregate(ctx, withOwner(match))
	if err != nil {
		return nil, err
	}
	var views []profileView
	if err := cursor.All(ctx, &views); err != nil {
		return nil, err
	}
	list := make([]domain.Profile, 0, len(views))
	for _, v := range views {
		list = append(list, v.toModel())
	}
	return list, nil
}

func (s *Storage) getProfile(ctx context.Context, owner bson.ObjectID) (domain.Profile, error) {
	list, err := s.findProfiles(ctx, bson.D{{Key: "user", Value: owner}})
	if err != nil {
		return domain.Profile{}, err
	}
	if len(list) == 0 {
		return domain.Profile{}, storage.ErrNotFound
	}
	return list[0], nil
}

func (s *Storage) UpsertProfile(ctx context.Context, userID string, fields domain.ProfileFields, now time.Time) (domain.Profile, error) {
	owner, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return domain.Profile{}, storage.ErrNotFound
	}

	set := bson.D{{Key: "social", Value: socialDocument(fields.Social)}}
	for _, f := range []struct {
		key   string
		value string
	}{
		{"company", fields.Company},
		{"website", fields.Website},
		{"location", fields.Location},
		{"status", fields.Status},
		{"bio", fields.Bio},
		{"githubusername", fields.GithubUsername},
	} {
		if f.value != "" {
			set = append(set, bson.E{Key: f.key, Value: f.value})
		}
	}
	onInsert := bson.D{
		{Key: "date", Value: now},
		{Key: "experience", Value: bson.A{}},
		{Key: "education", Value: bson.A{}},
	}
	if fields.Skills != nil {
		set = append(set, bson.E{Key: "skills", Value: fields.Skills})
	} else {
		onInsert = append(onInsert, bson.E{Key: "skills", Value: bson.A{}})
	}

	_, err = s.profiles.UpdateOne(ctx,
		bson.D{{Key: "user", Value: owner}},
		bson.D{{Key: "$set", Value: set}, {Key: "$setOnInsert", Value: onInsert}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.getProfile(ctx, owner)
}

func (s *Storage) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	owner, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return domain.Profile{}, storage.ErrNotFound
	}
	return s.getProfile(ctx, owner)
}

func (s *Storage) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	return s.findProfiles(ctx, bson.D{})
}

func (s *Storage) DeleteProfile(ctx context.Context, userID string) error {
	owner, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	_, err = s.profiles.DeleteOne(ctx, bson.D{{Key: "user", Value: owner}})
	return err
}

func (s *Storage) PushExperience(ctx context.Context, userID string, exp domain.Experience) (domain.Profile, error) {
	return s.push(ctx, userID, "experience", experienceDocument(exp))
}

func (s *Storage) PullExperience(ctx context.Context, userID string, expID string) (domain.Profile, error) {
	return s.pull(ctx, userID, "experience", expID)
}

func (s *Storage) PushEducation(ctx context.Context, userID string, edu domain.Education) (domain.Profile, error) {
	return s.push(ctx, userID, "education", educationDocument(edu))
}

func (s *Storage) PullEducation(ctx context.Context, userID string, eduID string) (domain.Profile, error) {
	return s.pull(ctx, userID, "education", eduID)
}

func (s *Storage) push(ctx context.Context, userID string, field string, entry any) (domain.Profile, error) {
	owner, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return domain.Profile{}, storage.ErrNotFound
	}
	res, err := s.profiles.UpdateOne(ctx,
		bson.D{{Key: "user", Value: owner}},
		bson.D{{Key: "$push", Value: bson.D{{Key: field, Value: bson.D{
			{Key: "$each", Value: bson.A{entry}},
			{Key: "$position", Value: 0},
		}}}}},
	)
	if err != nil {
		return domain.Profile{}, err
	}
	if res.MatchedCount == 0 {
		return domain.Profile{}, storage.ErrNotFound
	}
	return s.getProfile(ctx, owner)
}

func (s *Storage) pull(ctx context.Context, userID string, field string, entryID string) (domain.Profile, error) {
	owner, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return domain.Profile{}, storage.ErrNotFound
	}
	res, err := s.profiles.UpdateOne(ctx,
		bson.D{{Key: "user", Value: owner}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: field, Value: bson.D{{Key: "_id", Value: entryID}}}}}},
	)
	if err != nil {
		return domain.Profile{}, err
	}
	if res.MatchedCount == 0 {
		return domain.Profile{}, storage.ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return domain.Profile{}, storage.ErrEntryNotFound
	}
	return s.getProfile(ctx, owner)
}
