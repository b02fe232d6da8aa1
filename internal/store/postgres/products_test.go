package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"spoils/internal/store"
)

var productRowColumns = []string{
	"id", "barcode", "product_name", "brands", "categories", "quantity", "image_url",
	"nutriscore_grade", "nova_group", "ecoscore_grade", "ingredients_text", "allergens",
	"full_response", "created_at", "updated_at",
}

func productRow(id int64, barcode string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(productRowColumns).
		AddRow(id, barcode, "Granola", "Acme", nil, nil, nil,
			"b", 3, nil, "Oats, Honey.", nil, []byte(`{"code":"`+barcode+`"}`), now, now)
}

func TestUpsertProduct(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	name := "Granola"
	nova := 3
	raw := json.RawMessage(`{"code":"737628064502"}`)

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("737628064502", name, nil, nil, nil, nil, nil, nova, nil, nil, nil, []byte(raw)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	id, err := s.UpsertProduct(context.Background(), &store.Product{
		Barcode:      "737628064502",
		ProductName:  &name,
		NovaGroup:    &nova,
		FullResponse: raw,
	})
	if err != nil {
		t.Fatalf("UpsertProduct failed: %v", err)
	}
	if id != 9 {
		t.Errorf("got id %d, want 9", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpsertProduct_RefreshKeepsID(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	// The conflict arm updates in place, so the original row id comes back.
	mock.ExpectQuery(`ON CONFLICT \(barcode\) DO UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	id, err := s.UpsertProduct(context.Background(), &store.Product{
		Barcode:      "737628064502",
		FullResponse: json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("UpsertProduct failed: %v", err)
	}
	if id != 9 {
		t.Errorf("got id %d, want 9", id)
	}
}

func TestGetProductByBarcode(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE barcode = \$1`).
		WithArgs("737628064502").
		WillReturnRows(productRow(9, "737628064502"))

	p, err := s.GetProductByBarcode(context.Background(), "737628064502")
	if err != nil {
		t.Fatalf("GetProductByBarcode failed: %v", err)
	}
	if p.ID != 9 || p.Barcode != "737628064502" {
		t.Errorf("got (%d, %s), want (9, 737628064502)", p.ID, p.Barcode)
	}
	if p.ProductName == nil || *p.ProductName != "Granola" {
		t.Errorf("got name %v, want Granola", p.ProductName)
	}
	if p.NovaGroup == nil || *p.NovaGroup != 3 {
		t.Errorf("got nova group %v, want 3", p.NovaGroup)
	}
	if p.IngredientsText == nil || *p.IngredientsText != "Oats, Honey." {
		t.Errorf("got ingredients %v, want statement", p.IngredientsText)
	}
	if p.Categories != nil {
		t.Errorf("got categories %v, want nil", p.Categories)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetProductByBarcode_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE barcode = \$1`).
		WithArgs("000").
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	_, err := s.GetProductByBarcode(context.Background(), "000")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestGetProduct(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(productRow(9, "737628064502"))

	p, err := s.GetProduct(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if string(p.FullResponse) != `{"code":"737628064502"}` {
		t.Errorf("got raw response %s", p.FullResponse)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
