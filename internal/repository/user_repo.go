package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/skynetfrank/user-service/internal/entity"
)

var (
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrDuplicateNationalID = errors.New("national id already exists")
	ErrUserNotFound        = errors.New("user not found")
)

// failedLoginWindow is how long a sign-in failure counter lives in redis.
const failedLoginWindow = 15 * time.Minute

type mongoUser struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FirstName   string             `bson:"nombre"`
	LastName    string             `bson:"apellido"`
	NationalID  string             `bson:"cedula,omitempty"`
	Email       string             `bson:"email"`
	Password    string             `bson:"password"`
	Phone       string             `bson:"telefono,omitempty"`
	IsAdmin     bool               `bson:"isAdmin"`
	IsSeller    bool               `bson:"isVendedor"`
	IsActive    bool               `bson:"isActive"`
	IsProtected bool               `bson:"isProtected"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (m *mongoUser) toEntity() *entity.User {
	return &entity.User{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		NationalID:  m.NationalID,
		Email:       m.Email,
		Password:    m.Password,
		Phone:       m.Phone,
		IsAdmin:     m.IsAdmin,
		IsSeller:    m.IsSeller,
		IsActive:    m.IsActive,
		IsProtected: m.IsProtected,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromEntity(e *entity.User) *mongoUser {
	return &mongoUser{
		ID:          e.ID,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		NationalID:  e.NationalID,
		Email:       e.Email,
		Password:    e.Password,
		Phone:       e.Phone,
		IsAdmin:     e.IsAdmin,
		IsSeller:    e.IsSeller,
		IsActive:    e.IsActive,
		IsProtected: e.IsProtected,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type UserRepository struct {
	db     *mongo.Database
	redis  *redis.Client
	logger *zap.Logger
}

func NewUserRepository(db *mongo.Database, rds *redis.Client, logger *zap.Logger) *UserRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure unique indexes (idempotent operation). Uniqueness of email and
	// cedula relies entirely on these; concurrent writers race to the index.
	userCollection := db.Collection("users")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "cedula", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	}
	_, err := userCollection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Warn("Failed to create indexes for users collection (may already exist)", zap.Error(err))
	} else {
		logger.Info("Successfully ensured indexes for users collection")
	}

	return &UserRepository{
		db:     db,
		redis:  rds,
		logger: logger.Named("UserRepository"),
	}
}

// translateDuplicate maps a mongo unique-index violation (code 11000) onto
// the matching sentinel error, or returns nil when err is something else.
func translateDuplicate(err error) error {
	var writeException mongo.WriteException
	if !errors.As(err, &writeException) {
		return nil
	}
	for _, writeError := range writeException.WriteErrors {
		if writeError.Code != 11000 {
			continue
		}
		if strings.Contains(writeError.Message, "email_1") {
			return ErrDuplicateEmail
		}
		if strings.Contains(writeError.Message, "cedula_1") {
			return ErrDuplicateNationalID
		}
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error) {
	r.logger.Info("Creating user", zap.String("email", user.Email))

	dbUser := fromEntity(user)
	if dbUser.ID.IsZero() {
		dbUser.ID = primitive.NewObjectID()
	}
	now := time.Now()
	dbUser.CreatedAt = now
	dbUser.UpdatedAt = now

	_, err := r.db.Collection("users").InsertOne(ctx, dbUser)
	if err != nil {
		if dup := translateDuplicate(err); dup != nil {
			r.logger.Warn("Duplicate key during user creation", zap.String("email", user.Email), zap.Error(dup))
			return primitive.NilObjectID, dup
		}
		r.logger.Error("Database error during user creation", zap.String("email", user.Email), zap.Error(err))
		return primitive.NilObjectID, err
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return dbUser.ID, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID primitive.ObjectID) (*entity.User, error) {
	var dbUser mongoUser
	err := r.db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Database error fetching user by ID", zap.String("userID", userID.Hex()), zap.Error(err))
		return nil, err
	}
	return dbUser.toEntity(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var dbUser mongoUser
	err := r.db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Database error fetching user by email", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return dbUser.toEntity(), nil
}

// GetActiveByEmail only matches records that have not been soft-deleted; it
// backs the sign-in lookup.
func (r *UserRepository) GetActiveByEmail(ctx context.Context, email string) (*entity.User, error) {
	var dbUser mongoUser
	err := r.db.Collection("users").FindOne(ctx, bson.M{"email": email, "isActive": true}).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Database error fetching active user by email", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return dbUser.toEntity(), nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	r.logger.Info("Updating user", zap.String("userID", user.ID.Hex()))
	user.UpdatedAt = time.Now()
	dbUser := fromEntity(user)

	set := bson.M{
		"nombre":      dbUser.FirstName,
		"apellido":    dbUser.LastName,
		"email":       dbUser.Email,
		"password":    dbUser.Password,
		"telefono":    dbUser.Phone,
		"isAdmin":     dbUser.IsAdmin,
		"isVendedor":  dbUser.IsSeller,
		"isActive":    dbUser.IsActive,
		"isProtected": dbUser.IsProtected,
		"updatedAt":   dbUser.UpdatedAt,
	}
	updateDoc := bson.M{"$set": set}
	if dbUser.NationalID != "" {
		set["cedula"] = dbUser.NationalID
	} else {
		// An empty cedula must not occupy a slot in the sparse unique index.
		updateDoc["$unset"] = bson.M{"cedula": ""}
	}

	result, err := r.db.Collection("users").UpdateOne(ctx, bson.M{"_id": dbUser.ID}, updateDoc)
	if err != nil {
		if dup := translateDuplicate(err); dup != nil {
			r.logger.Warn("Duplicate key during user update", zap.String("userID", user.ID.Hex()), zap.Error(dup))
			return dup
		}
		r.logger.Error("Database error during user update", zap.String("userID", user.ID.Hex()), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func searchFilter(query string) bson.M {
	if query == "" {
		return bson.M{}
	}
	return bson.M{
		"$or": []bson.M{
			{"nombre": bson.M{"$regex": query, "$options": "i"}},
			{"email": bson.M{"$regex": query, "$options": "i"}},
			{"cedula": bson.M{"$regex": query, "$options": "i"}},
		},
	}
}

// Search returns a page of users matching the case-insensitive substring
// query against name, email or cedula. Active and inactive records both
// match; administrative listings show soft-deleted users.
func (r *UserRepository) Search(ctx context.Context, query string, skip, limit int64) ([]*entity.User, error) {
	findOptions := options.Find()
	findOptions.SetSkip(skip)
	findOptions.SetLimit(limit)

	cursor, err := r.db.Collection("users").Find(ctx, searchFilter(query), findOptions)
	if err != nil {
		r.logger.Error("Database error during user search", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var dbUsers []*mongoUser
	if err = cursor.All(ctx, &dbUsers); err != nil {
		r.logger.Error("Error decoding search results", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	var users []*entity.User
	for _, dbUser := range dbUsers {
		users = append(users, dbUser.toEntity())
	}
	return users, nil
}

// Count returns how many records match the same filter Search uses.
func (r *UserRepository) Count(ctx context.Context, query string) (int64, error) {
	count, err := r.db.Collection("users").CountDocuments(ctx, searchFilter(query))
	if err != nil {
		r.logger.Error("Database error counting users", zap.String("query", query), zap.Error(err))
		return 0, err
	}
	return count, nil
}

// ListSellers returns the minimal projection of every seller, ordered by
// first name ascending.
func (r *UserRepository) ListSellers(ctx context.Context) ([]*entity.Seller, error) {
	findOptions := options.Find()
	findOptions.SetProjection(bson.M{"_id": 1, "nombre": 1, "apellido": 1, "cedula": 1})
	findOptions.SetSort(bson.M{"nombre": 1})

	cursor, err := r.db.Collection("users").Find(ctx, bson.M{"isVendedor": true}, findOptions)
	if err != nil {
		r.logger.Error("Database error listing sellers", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*struct {
		ID         primitive.ObjectID `bson:"_id"`
		FirstName  string             `bson:"nombre"`
		LastName   string             `bson:"apellido"`
		NationalID string             `bson:"cedula,omitempty"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Error decoding seller listing", zap.Error(err))
		return nil, err
	}
	var sellers []*entity.Seller
	for _, d := range docs {
		sellers = append(sellers, &entity.Seller{
			ID:         d.ID,
			FirstName:  d.FirstName,
			LastName:   d.LastName,
			NationalID: d.NationalID,
		})
	}
	return sellers, nil
}

// FailedLoginAttempts reports how many sign-in failures are recorded for the
// email within the current window.
func (r *UserRepository) FailedLoginAttempts(ctx context.Context, email string) (int64, error) {
	n, err := r.redis.Get(ctx, "signin_fail:"+email).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// RecordFailedLogin bumps the failure counter, starting the expiry window on
// the first failure.
func (r *UserRepository) RecordFailedLogin(ctx context.Context, email string) error {
	key := "signin_fail:" + email
	n, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		return r.redis.Expire(ctx, key, failedLoginWindow).Err()
	}
	return nil
}

// ClearFailedLogins drops the counter after a successful sign-in.
func (r *UserRepository) ClearFailedLogins(ctx context.Context, email string) error {
	return r.redis.Del(ctx, "signin_fail:"+email).Err()
}
