package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

// LocalProvider keeps development accounts in SQLite with bcrypt password hashes.
// Federated login is not available locally.
type LocalProvider struct {
	db   *sql.DB
	cost int
}

// OpenLocal opens (or creates) the account database at path. ":memory:" is accepted.
func OpenLocal(path string) (*LocalProvider, error) {
	var dsn string
	if path == ":memory:" {
		dsn = "file::memory:"
	} else {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureAccountSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &LocalProvider{db: db, cost: bcrypt.DefaultCost}, nil
}

func ensureAccountSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS Accounts (
            Email TEXT PRIMARY KEY,
            DisplayName TEXT NOT NULL,
            PhotoURL TEXT NOT NULL DEFAULT '',
            PasswordHash BLOB NOT NULL,
            CreationTime TIMESTAMP NOT NULL
        );`)
	return err
}

// SignIn checks the password against the stored hash.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*model.UserIdentity, error) {
	var (
		id   model.UserIdentity
		hash []byte
	)
	row := p.db.QueryRowContext(ctx, `SELECT Email, DisplayName, PhotoURL, PasswordHash FROM Accounts WHERE Email = ?`, normalizeEmail(email))
	if err := row.Scan(&id.Email, &id.DisplayName, &id.PhotoURL, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	id.Provider = ProviderLocal
	return &id, nil
}

// SignUp stores a new account.
func (p *LocalProvider) SignUp(ctx context.Context, req SignUpRequest) (*model.UserIdentity, error) {
	email := normalizeEmail(req.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO Accounts (Email, DisplayName, PhotoURL, PasswordHash, CreationTime) VALUES (?,?,?,?,?)`,
		email, req.DisplayName, req.PhotoURL, hash, time.Now().UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &model.UserIdentity{
		Email:       email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Provider:    ProviderLocal,
	}, nil
}

// AuthCodeURL always fails: there is no federated provider in local mode.
func (p *LocalProvider) AuthCodeURL(string) (string, error) {
	return "", ErrFederatedUnavailable
}

// Exchange always fails: there is no federated provider in local mode.
func (p *LocalProvider) Exchange(context.Context, string) (*model.UserIdentity, error) {
	return nil, ErrFederatedUnavailable
}

// HealthPing pings the account database.
func (p *LocalProvider) HealthPing(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the database.
func (p *LocalProvider) Close() error { return p.db.Close() }

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
