// internal/notify/contacts.go

// Package notify delivers match notifications to freight owners and carriers
// through SES and SNS, deduplicated per fan-out pass.
package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/config"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/logger"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

const contactCacheKeyPrefix = "company:contact:"

// ErrContactNotFound marks a company without any usable contact entry.
var ErrContactNotFound = fmt.Errorf("company contact not found")

// ContactSource resolves company ids to contact details.
type ContactSource interface {
	GetContact(ctx context.Context, companyID string) (*models.CompanyContact, error)
}

// SQLContactSource reads company contacts from postgres with a redis
// read-through cache, following the freight lookup pattern.
type SQLContactSource struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewSQLContactSource creates the contact repository. The redis client may be
// nil, which disables caching.
func NewSQLContactSource(db *sql.DB, rdb *redis.Client, cfg config.NotificationConfig, log logger.Logger) *SQLContactSource {
	return &SQLContactSource{
		db:     db,
		redis:  rdb,
		ttl:    time.Duration(cfg.ContactCacheTTLSec) * time.Second,
		logger: log.WithFields(map[string]interface{}{"component": "contact-source"}),
	}
}

// GetContact resolves a company id to its notification contact. Cache entries
// that fail to unmarshal are treated as misses.
func (s *SQLContactSource) GetContact(ctx context.Context, companyID string) (*models.CompanyContact, error) {
	cacheKey := contactCacheKeyPrefix + companyID
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var contact models.CompanyContact
			if err := json.Unmarshal([]byte(val), &contact); err == nil {
				return &contact, nil
			}
		}
	}

	var contact models.CompanyContact
	var phone sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT company_id, email, phone FROM company_contacts WHERE company_id = $1`,
		companyID).Scan(&contact.CompanyID, &contact.Email, &phone)
	if err == sql.ErrNoRows {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact for company %s: %w", companyID, err)
	}
	contact.Phone = phone.String

	if s.redis != nil {
		if data, err := json.Marshal(&contact); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
				s.logger.Warn("contact cache write failed", map[string]interface{}{
					"companyId": companyID,
					"error":     err,
				})
			}
		}
	}

	return &contact, nil
}
