package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil error", nil, "idx_products_sku", false},
		{"postgres with matching constraint",
			errors.New(`duplicate key value violates unique constraint "idx_products_sku"`),
			"idx_products_sku", true},
		{"postgres with other constraint",
			errors.New(`duplicate key value violates unique constraint "idx_users_username"`),
			"idx_products_sku", false},
		{"postgres without constraint filter",
			errors.New(`duplicate key value violates unique constraint "idx_users_username"`),
			"", true},
		{"sqlite message",
			errors.New("UNIQUE constraint failed: products.sku"),
			"idx_products_sku", true},
		{"unrelated error", errors.New("connection refused"), "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v, %q) = %v, want %v", tc.err, tc.constraint, got, tc.want)
			}
		})
	}
}
