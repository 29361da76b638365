package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pas-gr3/cinema/internal/domain"
)

type accountDoc struct {
	ID       uuid.UUID `bson:"_id"`
	Login    string    `bson:"login"`
	Password string    `bson:"password"`
	Active   bool      `bson:"active"`
	Role     string    `bson:"role"`
}

func newAccountDoc(account *domain.Account) accountDoc {
	return accountDoc{
		ID:       account.ID,
		Login:    account.Login,
		Password: account.Password,
		Active:   account.Active,
		Role:     string(account.Role),
	}
}

func (d accountDoc) toAccount() *domain.Account {
	return &domain.Account{
		ID:       d.ID,
		Login:    d.Login,
		Password: d.Password,
		Active:   d.Active,
		Role:     domain.Role(d.Role),
	}
}

type MongoAccountRepository struct {
	store    *Mongo
	validate *validator.Validate
}

func NewMongoAccountRepository(store *Mongo, validate *validator.Validate) *MongoAccountRepository {
	return &MongoAccountRepository{
		store:    store,
		validate: validate,
	}
}

func (r *MongoAccountRepository) CreateClient(ctx context.Context, login, password string) (*domain.Account, error) {
	return r.create(ctx, login, password, domain.RoleClient)
}

func (r *MongoAccountRepository) CreateAdmin(ctx context.Context, login, password string) (*domain.Account, error) {
	return r.create(ctx, login, password, domain.RoleAdmin)
}

func (r *MongoAccountRepository) CreateStaff(ctx context.Context, login, password string) (*domain.Account, error) {
	return r.create(ctx, login, password, domain.RoleStaff)
}

func (r *MongoAccountRepository) create(ctx context.Context, login, password string, role domain.Role) (*domain.Account, error) {
	account := &domain.Account{
		ID:       uuid.New(),
		Login:    login,
		Password: password,
		Active:   true,
		Role:     role,
	}

	if err := r.validate.Struct(account); err != nil {
		return nil, fmt.Errorf("creating %s account: %w", role, err)
	}

	// Uniqueness comes from the index, not a pre-check, so two concurrent
	// creates with the same login cannot race past each other.
	_, err := r.store.accounts().InsertOne(ctx, newAccountDoc(account))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("creating %s account: %w", role, domain.ErrDuplicateLogin)
		}

		return nil, fmt.Errorf("creating %s account: %w", role, err)
	}

	return account, nil
}

func (r *MongoAccountRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoAccountRepository) GetByIdAndRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.Account, error) {
	account, err := r.GetById(ctx, id)
	if err != nil {
		return nil, err
	}

	// The discriminator is checked after the fetch: a document stored under
	// another role must not leak through a role-scoped read.
	if account.Role != role {
		return nil, domain.ErrAccountNotFound
	}

	return account, nil
}

func (r *MongoAccountRepository) GetByLogin(ctx context.Context, login string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"login": login})
}

func (r *MongoAccountRepository) GetByLoginAndRole(ctx context.Context, login string, role domain.Role) (*domain.Account, error) {
	account, err := r.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	if account.Role != role {
		return nil, domain.ErrAccountNotFound
	}

	return account, nil
}

func (r *MongoAccountRepository) GetAll(ctx context.Context) ([]*domain.Account, error) {
	return r.findAll(ctx, bson.M{})
}

func (r *MongoAccountRepository) GetAllByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	return r.findAll(ctx, bson.M{"role": string(role)})
}

func (r *MongoAccountRepository) GetAllMatchingLogin(ctx context.Context, prefix string) ([]*domain.Account, error) {
	return r.findAll(ctx, bson.M{"login": loginPrefixFilter(prefix)})
}

func (r *MongoAccountRepository) GetAllMatchingLoginByRole(ctx context.Context, prefix string, role domain.Role) ([]*domain.Account, error) {
	return r.findAll(ctx, bson.M{
		"login": loginPrefixFilter(prefix),
		"role":  string(role),
	})
}

// loginPrefixFilter builds the anchored, case-sensitive prefix regex.
func loginPrefixFilter(prefix string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix) + ".*$"}
}

func (r *MongoAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	if err := r.validate.Struct(account); err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	// Filtering on the stored role makes the role immutable: a replacement
	// can never move an account to a different variant.
	filter := bson.M{"_id": account.ID, "role": string(account.Role)}

	err := r.store.accounts().FindOneAndReplace(ctx, filter, newAccountDoc(account)).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("updating account: %w", domain.ErrAccountNotFound)
		}

		return fmt.Errorf("updating account: %w", err)
	}

	return nil
}

func (r *MongoAccountRepository) Activate(ctx context.Context, account *domain.Account) error {
	account.Active = true

	if err := r.Update(ctx, account); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrActivation, err)
	}

	return nil
}

func (r *MongoAccountRepository) Deactivate(ctx context.Context, account *domain.Account) error {
	account.Active = false

	if err := r.Update(ctx, account); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeactivation, err)
	}

	return nil
}

// Delete removes the account only when the stored role matches the expected
// one, so e.g. an admin cannot be removed through a client-scoped delete.
// Historical tickets referencing the account are left in place.
func (r *MongoAccountRepository) Delete(ctx context.Context, id uuid.UUID, role domain.Role) error {
	err := r.store.accounts().FindOneAndDelete(ctx, bson.M{"_id": id, "role": string(role)}).Err()
	if err == nil {
		return nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("deleting %s account: %w", role, err)
	}

	if _, lookupErr := r.GetById(ctx, id); lookupErr == nil {
		return fmt.Errorf("deleting %s account: %w", role, domain.ErrRoleMismatch)
	}

	return fmt.Errorf("deleting %s account: %w", role, domain.ErrAccountNotFound)
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDoc

	err := r.store.accounts().FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, fmt.Errorf("reading account: %w", err)
	}

	return doc.toAccount(), nil
}

func (r *MongoAccountRepository) findAll(ctx context.Context, filter bson.M) ([]*domain.Account, error) {
	cursor, err := r.store.accounts().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}

	var docs []accountDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(docs))
	for _, doc := range docs {
		accounts = append(accounts, doc.toAccount())
	}

	return accounts, nil
}
