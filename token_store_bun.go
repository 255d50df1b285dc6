package clubio

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	credentialKeyToken  = "auth_token"
	credentialKeyPortal = "portal_type"

	storeOpTimeout = 5 * time.Second
)

type credentialRecord struct {
	bun.BaseModel `bun:"table:credentials,alias:crd"`
	Name          string     `bun:"name,pk" json:"name"`
	Value         string     `bun:"value,notnull" json:"value,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

var _ TokenStore = &BunStore{}
var _ PreferenceStore = &BunStore{}

// BunStore persists the bearer token and the pre-auth portal selection in
// a SQLite credentials table. The token is cached in memory so request-time
// reads never touch the database; Set and Clear write through synchronously
// to keep the login ordering guarantee.
type BunStore struct {
	mu    sync.RWMutex
	db    *bun.DB
	token string
}

// OpenCredentialsDB opens (or creates) the SQLite database at path.
func OpenCredentialsDB(path string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to open credentials database")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// NewBunStore ensures the credentials table exists and loads any
// previously persisted token into the in-memory cache.
func NewBunStore(ctx context.Context, db *bun.DB) (*BunStore, error) {
	s := &BunStore{db: db}

	if _, err := db.NewCreateTable().
		Model((*credentialRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to create credentials table")
	}

	token, err := s.read(ctx, credentialKeyToken)
	if err != nil {
		return nil, err
	}
	s.token = token

	return s, nil
}

func (s *BunStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *BunStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(credentialKeyToken, token); err != nil {
		return err
	}

	s.token = token
	return nil
}

func (s *BunStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""

	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()

	if _, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("name = ?", credentialKeyToken).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to clear stored token")
	}

	return nil
}

// PortalType returns the persisted pre-auth portal selection, empty when
// none was recorded.
func (s *BunStore) PortalType() UserType {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()

	val, err := s.read(ctx, credentialKeyPortal)
	if err != nil {
		return ""
	}
	return UserType(val)
}

func (s *BunStore) SetPortalType(t UserType) error {
	if !ValidUserType(t) {
		return ErrIdentityMismatch.WithMetadata(map[string]any{
			"portal_type": t,
		})
	}
	return s.write(credentialKeyPortal, string(t))
}

func (s *BunStore) read(ctx context.Context, name string) (string, error) {
	record := &credentialRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read credential record")
	}

	return record.Value, nil
}

func (s *BunStore) write(name, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()

	now := time.Now()
	record := &credentialRecord{Name: name, Value: value, UpdatedAt: &now}

	if _, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to write credential record")
	}

	return nil
}
