package sales

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope is a composable query predicate applied to the sales table.
// Filter builders are pure: they only translate UI parameters into scopes.
type Scope func(*gorm.DB) *gorm.DB

// Filter groups the dashboard filter parameters
type Filter struct {
	Status      string // "pagos" (default), "cancelados", "todos"
	Channel     string // "mercado_livre", "shopee", "" for all
	ListingType string // "catalogo", "proprio", "" for all
	Modality    string // "full", "flex", "me", "" for all
	From        *time.Time
	To          *time.Time
	AccountIDs  []uuid.UUID
}

// Scopes expands the filter into the scopes it implies
func (f Filter) Scopes() []Scope {
	return []Scope{
		StatusScope(f.Status),
		ChannelScope(f.Channel),
		ListingTypeScope(f.ListingType),
		ModalityScope(f.Modality),
		PeriodScope(f.From, f.To),
		AccountScope(f.AccountIDs),
	}
}

// Apply runs every scope against the query
func (f Filter) Apply(db *gorm.DB) *gorm.DB {
	for _, scope := range f.Scopes() {
		db = scope(db)
	}
	return db
}

// StatusScope filters by payment status. The default is paid-only and has to
// match both vocabularies: Mercado Livre reports "paid", Shopee "COMPLETED".
func StatusScope(status string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case "cancelados":
			return db.Where("status ILIKE ?", "%cancel%")
		case "todos":
			return db
		default:
			return db.Where("status ILIKE ? OR status ILIKE ?", "%paid%", "%completed%")
		}
	}
}

// ChannelScope filters by marketplace
func ChannelScope(channel string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		switch channel {
		case "shopee":
			return db.Where("platform_code = ?", "SHOPEE")
		case "mercado_livre":
			return db.Where("platform_code = ?", "MELI")
		default:
			return db
		}
	}
}

// ListingTypeScope filters by listing kind (Mercado Livre only)
func ListingTypeScope(listingType string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		switch listingType {
		case "catalogo":
			return db.Where("listing_type ILIKE ?", "%catalog%")
		case "proprio":
			return db.Where("listing_type NOT ILIKE ?", "%catalog%")
		default:
			return db
		}
	}
}

// ModalityScope filters by shipping modality. "me" is everything that is
// neither fulfillment nor flex.
func ModalityScope(modality string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		switch modality {
		case "full":
			return db.Where("logistic_type ILIKE ?", "%fulfill%")
		case "flex":
			return db.Where("logistic_type ILIKE ? OR logistic_type ILIKE ?", "%flex%", "%self_service%")
		case "me":
			return db.Where("logistic_type NOT ILIKE ? AND logistic_type NOT ILIKE ? AND logistic_type NOT ILIKE ?",
				"%fulfill%", "%flex%", "%self_service%")
		default:
			return db
		}
	}
}

// PeriodScope bounds the sale date
func PeriodScope(from, to *time.Time) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("sale_date >= ?", *from)
		}
		if to != nil {
			db = db.Where("sale_date < ?", *to)
		}
		return db
	}
}

// AccountScope limits to a set of accounts
func AccountScope(ids []uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if len(ids) == 0 {
			return db
		}
		return db.Where("account_id IN ?", ids)
	}
}
