package tokens

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"pdfexport/internal/config"
)

func TestLoadStaticAndValidation(t *testing.T) {
	s := NewStore(config.PostgresConfig{})

	assert.False(t, s.Ready())

	s.LoadStatic("a", "b")

	assert.True(t, s.Ready())
	assert.True(t, s.Validate("a"))
	assert.True(t, s.Validate("b"))
	assert.False(t, s.Validate("c"))
}

func TestLoadStaticReplacesCache(t *testing.T) {
	s := NewStore(config.PostgresConfig{})

	s.LoadStatic("a", "b")
	s.LoadStatic("a", "c")

	assert.True(t, s.Validate("a"))
	assert.False(t, s.Validate("b"))
	assert.True(t, s.Validate("c"))
}

func TestDSN_BuildsURL(t *testing.T) {
	dsn, err := DSN(config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "pdfexport",
		User:     "user",
		Password: "p@ss word",
		SSLMode:  "disable",
	})
	assert.NoError(t, err)

	u, err := url.Parse(dsn)
	assert.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "localhost:5432", u.Host)
	assert.Equal(t, "/pdfexport", u.Path)
	assert.Equal(t, "user", u.User.Username())
	pw, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "p@ss word", pw)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestDSN_Passthrough(t *testing.T) {
	raw := "postgres://u:p@localhost:5432/db?sslmode=disable"
	dsn, err := DSN(config.PostgresConfig{Host: raw})
	assert.NoError(t, err)
	assert.Equal(t, raw, dsn)
}

func TestDSN_RejectsIncompleteConfig(t *testing.T) {
	_, err := DSN(config.PostgresConfig{Host: "localhost"})
	assert.Error(t, err)

	_, err = DSN(config.PostgresConfig{Host: "localhost", Database: "db"})
	assert.Error(t, err)

	_, err = DSN(config.PostgresConfig{})
	assert.Error(t, err)
}
