package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNPreservesExplicitValue(t *testing.T) {
	db := DBConfig{DSN: "postgres://u:p@localhost:5432/stockroom"}
	if err := db.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.DSN != "postgres://u:p@localhost:5432/stockroom" {
		t.Fatalf("DSN rewritten: %s", db.DSN)
	}
}

func TestEnsureDSNBuildsFromLegacyVars(t *testing.T) {
	db := DBConfig{
		LegacyHost:     "db.internal",
		LegacyPort:     5432,
		LegacyUser:     "stockroom",
		LegacyPassword: "secret",
		LegacyName:     "stockroom",
		LegacySSLMode:  "require",
	}
	if err := db.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"postgres://", "db.internal:5432", "sslmode=require"} {
		if !strings.Contains(db.DSN, want) {
			t.Fatalf("DSN %q missing %q", db.DSN, want)
		}
	}
}

func TestEnsureDSNReportsMissingLegacyVars(t *testing.T) {
	db := DBConfig{LegacyHost: "db.internal"}
	err := db.ensureDSN()
	if err == nil {
		t.Fatal("expected error for missing legacy vars")
	}
	if !strings.Contains(err.Error(), EnvDBUser) || !strings.Contains(err.Error(), EnvDBName) {
		t.Fatalf("error should name missing vars: %v", err)
	}
}

func TestAppEnvHelpers(t *testing.T) {
	app := AppConfig{Env: "DEV"}
	if !app.IsDev() || app.IsProd() {
		t.Fatal("expected dev environment")
	}
	app.Env = "prod"
	if app.IsDev() || !app.IsProd() {
		t.Fatal("expected prod environment")
	}
}
