package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // postgresql driver
	"github.com/sirupsen/logrus"

	"github.com/goserg/devconnector/auth/users"
	"github.com/goserg/devconnector/internal/domain"
	"github.com/goserg/devconnector/internal/migrate"
	"github.com/goserg/devconnector/internal/storage"
	"github.com/goserg/devconnector/internal/storage/sqlutil"
)

const uniqueViolation = "23505"

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.Storage = (*Storage)(nil)

func New(ctx context.Context, l *logrus.Logger, config Config) (*Storage, error) {
	log := l.WithField("from", "postgres-storage")
	db, err := sql.Open("pgx", config.ConnectionString())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	if err := migrate.UpPostgres(db); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	log.WithField("db", config.DBName).Info("storage connected")
	return &Storage{
		db:  db,
		log: log,
	}, nil
}

func (s *Storage) Close(context.Context) error {
	return s.db.Close()
}

// validID reports whether id can be a key at all. Anything else is simply
// not found instead of a type error from the server.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Storage) CreateUser(ctx context.Context, user users.User, secret users.Secret) (users.User, error) {
	user.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, avatar, password_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.Avatar, secret.PasswordHash, user.RegisteredAt.UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return users.User{}, storage.ErrUserExists
		}
		return users.User{}, err
	}
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (users.User, users.Secret, error) {
	var (
		u      users.User
		secret users.Secret
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, avatar, created_at, password_hash FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.RegisteredAt, &secret.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.Secret{}, storage.ErrNotFound
		}
		return users.User{}, users.Secret{}, err
	}
	return u, secret, nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (users.User, error) {
	if !validID(id) {
		return users.User{}, storage.ErrNotFound
	}
	var u users.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, avatar, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, storage.ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const selectProfile = `SELECT p.id, p.data, p.created_at, u.id, u.name, u.avatar
FROM profiles p
INNER JOIN users u ON u.id = p.user_id`

func scanProfile(row interface{ Scan(dest ...any) error }) (domain.Profile, error) {
	var (
		p    domain.Profile
		data []byte
	)
	err := row.Scan(&p.ID, &data, &p.Date, &p.User.ID, &p.User.Name, &p.User.Avatar)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := sqlutil.DecodeProfile(data, &p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func getProfile(ctx context.Context, q sqlutil.Querier, userID string, lock bool) (domain.Profile, error) {
	if !validID(userID) {
		return domain.Profile{}, storage.ErrNotFound
	}
	query := selectProfile + ` WHERE p.user_id = $1`
	if lock {
		query += ` FOR UPDATE OF p`
	}
	p, err := scanProfile(q.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, storage.ErrNotFound
		}
		return domain.Profile{}, err
	}
	return p, nil
}

func saveProfile(ctx context.Context, q sqlutil.Querier, p domain.Profile) error {
	data, err := sqlutil.EncodeProfile(p)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `UPDATE profiles SET data = $1 WHERE id = $2`, string(data), p.ID)
	return err
}

func (s *Storage) UpsertProfile(ctx context.Context, userID string, fields domain.ProfileFields, now time.Time) (domain.Profile, error) {
	if !validID(userID) {
		return domain.Profile{}, storage.ErrNotFound
	}
	return sqlutil.InTx(ctx, s.db, func(tx *sql.Tx) (domain.Profile, error) {
		empty, err := sqlutil.EncodeProfile(domain.Profile{})
		if err != nil {
			return domain.Profile{}, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO profiles (id, user_id, data, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (user_id) DO NOTHING`,
			uuid.NewString(), userID, string(empty), now.UTC(),
		)
		if err != nil {
			return domain.Profile{}, err
		}
		p, err := getProfile(ctx, tx, userID, true)
		if err != nil {
			return domain.Profile{}, err
		}
		p.Apply(fields)
		if err := saveProfile(ctx, tx, p); err != nil {
			return domain.Profile{}, err
		}
		return p, nil
	})
}

func (s *Storage) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	return getProfile(ctx, s.db, userID, false)
}

func (s *Storage) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, selectProfile+` ORDER BY p.created_at, p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (s *Storage) DeleteProfile(ctx context.Context, userID string) error {
	if !validID(userID) {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	return err
}

func (s *Storage) PushExperience(ctx context.Context, userID string, exp domain.Experience) (domain.Profile, error) {
	return s.update(ctx, userID, func(p *domain.Profile) error {
		p.PrependExperience(exp)
		return nil
	})
}

func (s *Storage) PullExperience(ctx context.Context, userID string, expID string) (domain.Profile, error) {
	return s.update(ctx, userID, func(p *domain.Profile) error {
		if !p.RemoveExperience(expID) {
			return storage.ErrEntryNotFound
		}
		return nil
	})
}

func (s *Storage) PushEducation(ctx context.Context, userID string, edu domain.Education) (domain.Profile, error) {
	return s.update(ctx, userID, func(p *domain.Profile) error {
		p.PrependEducation(edu)
		return nil
	})
}

func (s *Storage) PullEducation(ctx context.Context, userID string, eduID string) (domain.Profile, error) {
	return s.update(ctx, userID, func(p *domain.Profile) error {
		if !p.RemoveEducation(eduID) {
			return storage.ErrEntryNotFound
		}
		return nil
	})
}

func (s *Storage) update(ctx context.Context, userID string, fn func(p *domain.Profile) error) (domain.Profile, error) {
	return sqlutil.InTx(ctx, s.db, func(tx *sql.Tx) (domain.Profile, error) {
		p, err := getProfile(ctx, tx, userID, true)
		if err != nil {
			return domain.Profile{}, err
		}
		if err := fn(&p); err != nil {
			return domain.Profile{}, err
		}
		if err := saveProfile(ctx, tx, p); err != nil {
			return domain.Profile{}, err
		}
		return p, nil
	})
}
