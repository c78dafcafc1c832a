package fixtures

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"companion_mock/internal/model"
	"companion_mock/internal/store/sqlite"
)

//go:embed data/*.json
var embedded embed.FS

// Accounts groups the singleton records of the mock user.
type Accounts struct {
	User          model.AuthUser      `json:"user"`
	Profile       model.ParentProfile `json:"profile"`
	ParentWallet  model.ParentWallet  `json:"parentWallet"`
	PaymentWallet model.PaymentWallet `json:"paymentWallet"`
}

// Set is the decoded seed data.
type Set struct {
	Tags           []model.Tag
	Companions     []model.Companion
	Demands        []model.Demand
	Orders         []model.Order
	Extensions     []model.Extension
	Notifications  []model.Notification
	Reviews        []model.Review
	CoursePackages []model.CoursePackage
	PaymentRecords []model.PaymentRecord
	Children       []model.Child
	Addresses      []model.Address
	Accounts       Accounts
	Calendar       model.CalendarTemplate
}

// Load decodes the seed files. A file present in dir replaces the embedded
// file of the same name; dir may be empty.
func Load(dir string) (*Set, error) {
	src := source{dir: strings.TrimSpace(dir)}
	s := &Set{}
	files := []struct {
		name string
		dst  any
	}{
		{"tags.json", &s.Tags},
		{"companions.json", &s.Companions},
		{"demands.json", &s.Demands},
		{"orders.json", &s.Orders},
		{"extensions.json", &s.Extensions},
		{"notifications.json", &s.Notifications},
		{"reviews.json", &s.Reviews},
		{"coursePackages.json", &s.CoursePackages},
		{"paymentRecords.json", &s.PaymentRecords},
		{"children.json", &s.Children},
		{"addresses.json", &s.Addresses},
		{"accounts.json", &s.Accounts},
		{"calendar.json", &s.Calendar},
	}
	for _, f := range files {
		b, err := src.read(f.name)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, f.dst); err != nil {
			return nil, fmt.Errorf("fixture %s: %w", f.name, err)
		}
	}
	return s, nil
}

type source struct {
	dir string
}

func (s source) read(name string) ([]byte, error) {
	if s.dir != "" {
		b, err := os.ReadFile(filepath.Join(s.dir, name))
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("fixture %s: %w", name, err)
		}
	}
	b, err := embedded.ReadFile("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", name, err)
	}
	return b, nil
}

// Seed writes the set into the store. Collections that already hold documents
// and singletons that already exist are left untouched, so a file-backed store
// keeps its state across restarts.
func Seed(ctx context.Context, st *sqlite.Store, s *Set) error {
	return st.Update(ctx, func(tx *sqlite.Tx) error {
		if err := seedCollection(tx, model.CollectionTags, s.Tags, func(v model.Tag) string { return v.ID }); err != nil {
			return err
		}
		if err := seedCollection(tx, model.CollectionCompanions, s.Companions, func(v model.Companion) string { return v.ID }); err != nil {
			return err
		}
		if err := seedCollection(tx, model.CollectionDemands, s.Demands, func(v model.Demand) string { return v.ID }); err != nil {
			return err
		}
		if err := seedCollection(tx, model.CollectionOrders, s.Orders, func(v model.Order) string { return v.ID }); err != nil {
			return err
		}
		if err := seedCollection(tx, model.CollectionExtensions, s.Extensions, func(v model.Extension) string { return v.ID }); err != nil {
			return err
		}
		if err := seedCollection(tx, model.CollectionNotifications, s.Notifications, func(v model.Notification) string { return v.ID }); err != nil {
			return err
		}
		if err := seedCollection(tx, model.CollectionReviews, s.Reviews, func(v model.Review) string { return v.ID }); err != nil {
			return err
		}
		if err := seedCollection(tx, model.CollectionCoursePackages, s.CoursePackages, func(v model.CoursePackage) string { return v.ID }); err != nil {
			return err
		}
		if err := seedCollection(tx, model.CollectionPaymentRecords, s.PaymentRecords, func(v model.PaymentRecord) string { return v.ID }); err != nil {
			return err
		}
		if err := seedCollection(tx, model.CollectionChildren, s.Children, func(v model.Child) string { return v.ID }); err != nil {
			return err
		}
		if err := seedCollection(tx, model.CollectionAddresses, s.Addresses, func(v model.Address) string { return v.ID }); err != nil {
			return err
		}

		if err := seedValue(tx, model.KeyAuthUser, s.Accounts.User); err != nil {
			return err
		}
		if err := seedValue(tx, model.KeyParentProfile, s.Accounts.Profile); err != nil {
			return err
		}
		if err := seedValue(tx, model.KeyParentWallet, s.Accounts.ParentWallet); err != nil {
			return err
		}
		if err := seedValue(tx, model.KeyPaymentWallet, s.Accounts.PaymentWallet); err != nil {
			return err
		}
		return seedValue(tx, model.KeyCalendar, s.Calendar)
	})
}

// seedCollection also moves the collection's id sequence to the fixture count,
// so the first generated id follows the seeded ones.
func seedCollection[T any](tx *sqlite.Tx, collection string, items []T, id func(T) string) error {
	n, err := sqlite.Count(tx, collection)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, it := range items {
		if err := sqlite.Put(tx, collection, id(it), it); err != nil {
			return err
		}
	}
	return tx.SetSeq(collection, int64(len(items)))
}

func seedValue[T any](tx *sqlite.Tx, key string, v T) error {
	_, ok, err := sqlite.GetValue[T](tx, key)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return sqlite.PutValue(tx, key, v)
}
