package sandbox

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultJWTSecret signs tokens when no secret is configured.
const DefaultJWTSecret = "sandbox-secret"

// DemoUser is a seeded user the sandbox can issue tokens for.
type DemoUser struct {
	ID    int64
	Email string
}

// DemoUsers are the users created by SeedDemo.
var DemoUsers = []DemoUser{
	{ID: 7, Email: "marko.markovic@banka1.test"},
	{ID: 8, Email: "jelena.jovanovic@banka1.test"},
}

// SeedDemo fills the store with accounts, recipients and payment codes for DemoUsers.
func SeedDemo(s *Store) error {
	accounts := []struct {
		id, owner                          int64
		number, subtype, currency, balance string
	}{
		{1, 7, "111000100000000111", "CURRENT", "EUR", "100"},
		{2, 7, "111000100000000222", "SAVINGS", "RSD", "250000.50"},
		{3, 8, "111000100000000333", "CURRENT", "EUR", "1000"},
		{4, 8, "111000100000000444", "CURRENT", "RSD", "48000"},
	}
	for _, a := range accounts {
		if err := s.AddAccount(a.id, a.owner, a.number, a.subtype, a.currency, a.balance); err != nil {
			return fmt.Errorf("failed to seed account %d: %w", a.id, err)
		}
	}

	s.AddReceiver(1, 7, "Jelena", "Jovanovic", "111000100000000333", "Bulevar Kralja Aleksandra 73, Beograd")
	s.AddReceiver(2, 7, "Jelena", "Jovanovic", "111000100000000444", "Bulevar Kralja Aleksandra 73, Beograd")
	s.AddReceiver(3, 8, "Marko", "Markovic", "111000100000000111", "Knez Mihailova 6, Beograd")

	s.AddPaymentCode("221", "Promet robe i usluga - medjufazna potrosnja")
	s.AddPaymentCode("289", "Transakcije po nalogu gradjana")
	s.AddPaymentCode("290", "Druge transakcije")
	return nil
}

// Server bundles the store with its HTTP handler.
type Server struct {
	Store   *Store
	Handler http.Handler
	secret  string
}

// New builds a sandbox backend. Demo data is seeded when seed is true.
func New(opts Options, seed bool) (*Server, error) {
	if opts.JWTSecret == "" {
		opts.JWTSecret = DefaultJWTSecret
	}
	store := NewStore(opts)
	if seed {
		if err := SeedDemo(store); err != nil {
			return nil, err
		}
	}
	return &Server{
		Store:   store,
		Handler: NewRouter(NewHandler(store), opts.JWTSecret, opts.AccessLog),
		secret:  opts.JWTSecret,
	}, nil
}

// Token issues a token for userID signed with the server's secret.
func (s *Server) Token(userID int64, email string, ttl time.Duration) (string, error) {
	return IssueToken(s.secret, userID, email, ttl)
}
