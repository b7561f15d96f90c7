/*
Copyright 2024 by Milo Christiansen

This software is provided 'as-is', without any express or implied warranty. In
no event will the authors be held liable for any damages arising from the use of
this software.

Permission is granted to anyone to use this software for any purpose, including
commercial applications, and to alter it and redistribute it freely, subject to
the following restrictions:

1. The origin of this software must not be misrepresented; you must not claim
that you wrote the original software. If you use this software in a product, an
acknowledgment in the product documentation would be appreciated but is not
required.

2. Altered source versions must be plainly marked as such, and must not be
misrepresented as being the original software.

3. This notice may not be removed or altered from any source distribution.
*/

/*
Package sqlstore keeps transactions in a SQLite database through gorm.

Only the latest revision of each transaction is kept. Order transactions are indexed by marketplace and
order number so FindOrder does not need the date hint.
*/
package sqlstore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/updater"
)

type transactionRecord struct {
	ID          uint      `gorm:"primaryKey"`
	Code        string    `gorm:"size:32;uniqueIndex;not null"`
	Date        time.Time `gorm:"index;not null"`
	ClearDate   time.Time
	Status      int
	Description string
	Marketplace string `gorm:"size:32;index:idx_order"`
	OrderNumber string `gorm:"size:64;index:idx_order"`

	Comments []string          `gorm:"serializer:json"`
	Tags     map[string]bool   `gorm:"serializer:json"`
	KVPairs  map[string]string `gorm:"serializer:json"`

	Postings []postingRecord `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (transactionRecord) TableName() string {
	return "transactions"
}

type postingRecord struct {
	ID            uint `gorm:"primaryKey"`
	TransactionID uint `gorm:"index;not null"`
	Position      int  `gorm:"not null"`
	Status        int
	Account       string `gorm:"index;not null"`
	Value         int64
	Null          bool
	Note          string
	Meta          map[string]string `gorm:"serializer:json"`
}

func (postingRecord) TableName() string {
	return "postings"
}

// Store is an updater.Store backed by a database.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database and migrates the schema. Use "file::memory:?cache=shared" style
// DSNs for throwaway stores.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %v: %w", dsn, err)
	}

	if err := db.AutoMigrate(&transactionRecord{}, &postingRecord{}); err != nil {
		return nil, fmt.Errorf("migrate %v: %w", dsn, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// FindOrder implements updater.Store. The date hint is not needed.
func (s *Store) FindOrder(market, number string, near time.Time) (*ledger.Transaction, error) {
	rec := transactionRecord{}
	err := s.db.Preload("Postings", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Where("marketplace = ? AND order_number = ?", market, number).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.transaction(), nil
}

// Save implements updater.Store. The postings of an existing transaction are replaced as a whole.
func (s *Store) Save(tr *ledger.Transaction) error {
	if err := tr.Validate(); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var taken error
		updater.Stamp(tr, func(code string) bool {
			var n int64
			if err := tx.Model(&transactionRecord{}).Where("code = ?", code).Count(&n).Error; err != nil {
				taken = err
				return false
			}
			return n > 0
		})
		if taken != nil {
			return taken
		}

		rec := record(tr)
		existing := transactionRecord{}
		err := tx.Where("code = ?", tr.Code).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&rec).Error
		case err != nil:
			return err
		}

		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		if err := tx.Where("transaction_id = ?", existing.ID).Delete(&postingRecord{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&rec).Error
	})
}

// Transactions implements updater.Store, in date order.
func (s *Store) Transactions() ([]ledger.Transaction, error) {
	recs := []transactionRecord{}
	err := s.db.Preload("Postings", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Order("date, id").Find(&recs).Error
	if err != nil {
		return nil, err
	}

	trs := make([]ledger.Transaction, 0, len(recs))
	for i := range recs {
		trs = append(trs, *recs[i].transaction())
	}
	return trs, nil
}

func record(tr *ledger.Transaction) transactionRecord {
	rec := transactionRecord{
		Code:        tr.Code,
		Date:        tr.Date,
		ClearDate:   tr.ClearDate,
		Status:      int(tr.Status),
		Description: tr.Description,
		Marketplace: tr.KVPairs[updater.KeyMarketplace],
		OrderNumber: tr.KVPairs[updater.KeyOrderNumber],
		Comments:    tr.Comments,
		Tags:        tr.Tags,
		KVPairs:     tr.KVPairs,
	}
	for i, p := range tr.Postings {
		rec.Postings = append(rec.Postings, postingRecord{
			Position: i,
			Status:   int(p.Status),
			Account:  p.Account,
			Value:    p.Value,
			Null:     p.Null,
			Note:     p.Note,
			Meta:     p.Meta,
		})
	}
	return rec
}

func (rec *transactionRecord) transaction() *ledger.Transaction {
	tr := &ledger.Transaction{
		Date:        rec.Date.UTC(),
		ClearDate:   rec.ClearDate.UTC(),
		Status:      ledger.Status(rec.Status),
		Code:        rec.Code,
		Description: rec.Description,
		Comments:    rec.Comments,
		Tags:        rec.Tags,
		KVPairs:     rec.KVPairs,
	}
	if tr.Tags == nil {
		tr.Tags = map[string]bool{}
	}
	if tr.KVPairs == nil {
		tr.KVPairs = map[string]string{}
	}
	for _, p := range rec.Postings {
		tr.Postings = append(tr.Postings, ledger.Posting{
			Status:  ledger.Status(p.Status),
			Account: p.Account,
			Value:   p.Value,
			Null:    p.Null,
			Note:    p.Note,
			Meta:    p.Meta,
		})
	}
	return tr
}
