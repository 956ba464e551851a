// Package credentials resolves the secrets a run needs: Git provider tokens
// from the environment and registry logins from a docker config file.
//
// Secrets are resolved once, before any network call, and shared read-only
// by every service pipeline. A [Set] also remembers every secret value it
// handed out so error messages can be scrubbed with [Set.Secrets].
package credentials

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"oras.land/oras-go/v2/registry/remote/auth"
	remotecredentials "oras.land/oras-go/v2/registry/remote/credentials"

	errs "github.com/matzehuels/versionsync/pkg/errors"
)

// TokenEnv maps provider names to the environment variable holding their token.
var TokenEnv = map[string]string{
	"github":   "GITHUB_TOKEN",
	"gitlab":   "GITLAB_TOKEN",
	"codeberg": "CODEBERG_TOKEN",
}

// Requirement states that a service uses a provider and whether a token is
// mandatory for it.
type Requirement struct {
	Service  string
	Provider string
	Required bool
}

// Options configures [Resolve].
type Options struct {
	// Env is the viper instance tokens are read from. Nil creates one bound
	// to the process environment.
	Env *viper.Viper

	// DockerConfig is the path of a docker config.json. Empty uses the
	// docker CLI's default location; a missing default file means anonymous
	// registry access.
	DockerConfig string
}

// Set is the read-only credential material of one run.
type Set struct {
	tokens map[string]string
	store  remotecredentials.Store

	mu      sync.Mutex
	secrets []string
}

// Resolve loads provider tokens for every provider named in reqs and opens
// the registry credential store. A required token that is absent or empty is
// a [errs.ErrCodeConfiguration] error naming the service and variable.
func Resolve(ctx context.Context, opts Options, reqs []Requirement) (*Set, error) {
	v := opts.Env
	if v == nil {
		v = NewEnv()
	}

	s := &Set{tokens: make(map[string]string)}
	for _, req := range reqs {
		env, ok := TokenEnv[req.Provider]
		if !ok {
			continue
		}
		token, present := lookup(v, env)
		if req.Required && (!present || token == "") {
			return nil, errs.New(errs.ErrCodeConfiguration,
				"service %q: %s is required for %s but not set", req.Service, env, req.Provider)
		}
		if present && token != "" {
			s.tokens[req.Provider] = token
			s.remember(token)
		}
	}

	store, err := openStore(opts.DockerConfig)
	if err != nil {
		return nil, err
	}
	s.store = store
	return s, nil
}

// Static returns a Set holding the given provider tokens and no registry
// credentials.
func Static(tokens map[string]string) *Set {
	s := &Set{tokens: make(map[string]string, len(tokens))}
	for p, t := range tokens {
		s.tokens[p] = t
		s.remember(t)
	}
	return s
}

// NewEnv returns a viper instance bound to the provider token variables.
// Empty variables count as set so that Resolve can report them precisely.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.AllowEmptyEnv(true)
	for _, env := range TokenEnv {
		_ = v.BindEnv(strings.ToLower(env), env)
	}
	return v
}

func lookup(v *viper.Viper, env string) (string, bool) {
	key := strings.ToLower(env)
	if !v.IsSet(key) {
		return "", false
	}
	return v.GetString(key), true
}

// Token returns the token for provider, if one is configured.
func (s *Set) Token(provider string) (string, bool) {
	t, ok := s.tokens[provider]
	return t, ok
}

// Registry returns the login stored for a registry host, or
// [auth.EmptyCredential] for anonymous access. host is the API host the
// registry is probed at; Docker Hub logins are stored by the docker CLI
// under "https://index.docker.io/v1/" and are found from either of its
// API hosts.
func (s *Set) Registry(ctx context.Context, host string) (auth.Credential, error) {
	if s.store == nil {
		return auth.EmptyCredential, nil
	}
	addr := remotecredentials.ServerAddressFromRegistry(remotecredentials.ServerAddressFromHostname(host))
	cred, err := s.store.Get(ctx, addr)
	if err != nil {
		return auth.EmptyCredential, errs.Wrap(errs.ErrCodeInternal, err, "read credentials for %s", host)
	}
	s.remember(cred.Password, cred.AccessToken, cred.RefreshToken)
	return cred, nil
}

// Secrets returns every secret value handed out so far.
func (s *Set) Secrets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.secrets)
}

func (s *Set) remember(values ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range values {
		if v != "" && !slices.Contains(s.secrets, v) {
			s.secrets = append(s.secrets, v)
		}
	}
}

func openStore(path string) (remotecredentials.Store, error) {
	if path == "" {
		store, err := remotecredentials.NewStoreFromDocker(remotecredentials.StoreOptions{})
		if err != nil {
			// No usable default docker config: registries are accessed anonymously.
			return nil, nil
		}
		return store, nil
	}

	path = expandHome(path)
	if _, err := os.Stat(path); err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "docker config %s", path)
	}
	store, err := remotecredentials.NewStore(path, remotecredentials.StoreOptions{})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "docker config %s", path)
	}
	return store, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
