// Package supabase builds the hosted backend clients used for identity and
// table access.
package supabase

import (
	"fmt"
	"net/url"

	supa "github.com/nedpals/supabase-go"

	"github.com/noah-isme/unitrack-api/pkg/config"
)

// Clients holds one client per key. Auth calls always use the anon key;
// table calls use the service role key when one is configured.
type Clients struct {
	Auth  *supa.Client
	Table *supa.Client
}

// New validates the endpoint and constructs the clients.
func New(cfg config.SupabaseConfig, debug bool) (*Clients, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, config.ErrMissingSupabase
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid SUPABASE_URL %q", cfg.URL)
	}

	auth := supa.CreateClient(cfg.URL, cfg.AnonKey, debug)
	table := auth
	if key := cfg.TableKey(); key != cfg.AnonKey {
		table = supa.CreateClient(cfg.URL, key, debug)
	}
	return &Clients{Auth: auth, Table: table}, nil
}
