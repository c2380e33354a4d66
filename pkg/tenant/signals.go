package tenant

import (
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/identity"
)

// MaxIDLength is the longest accepted non-UUID tenant identifier (a DNS label).
const MaxIDLength = 63

var labelPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// Signals is the normalized set of request inputs that may name a tenant.
type Signals struct {
	Subdomain   string
	Param       string
	Header      string
	Cookie      string
	Claim       string
	PrincipalID string
}

// IsValidID reports whether id is a UUID or a DNS label of at most 63 characters.
func IsValidID(id string) bool {
	if id == "" {
		return false
	}
	if _, err := uuid.Parse(id); err == nil {
		return true
	}
	return len(id) <= MaxIDLength && labelPattern.MatchString(id)
}

// SubdomainLabel extracts the tenant label from host. With a base domain
// configured only hosts under it qualify; without one, the host needs at least
// three labels. The leftmost label is used after skipping "www". Malformed
// labels yield "".
func SubdomainLabel(host, baseDomain string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}

	var rest string
	if baseDomain != "" {
		suffix := "." + strings.ToLower(strings.TrimPrefix(baseDomain, "."))
		if !strings.HasSuffix(host, suffix) {
			return ""
		}
		rest = strings.TrimSuffix(host, suffix)
	} else {
		parts := strings.Split(host, ".")
		if len(parts) < 3 {
			return ""
		}
		rest = strings.Join(parts[:len(parts)-2], ".")
	}

	labels := strings.Split(rest, ".")
	if labels[0] == "www" {
		labels = labels[1:]
	}
	if len(labels) == 0 {
		return ""
	}
	label := labels[0]
	if len(label) > MaxIDLength || !labelPattern.MatchString(label) {
		return ""
	}
	return label
}

// ExtractSignals reads tenant inputs from r. The session claim and principal
// come from values an upstream auth layer put on the request context.
func ExtractSignals(r *http.Request, cfg Config) Signals {
	s := Signals{
		Subdomain: SubdomainLabel(r.Host, cfg.BaseDomain),
		Claim:     SessionClaimFromContext(r.Context()),
	}
	if cfg.QueryParam != "" {
		s.Param = strings.TrimSpace(r.URL.Query().Get(cfg.QueryParam))
	}
	if cfg.Header != "" {
		s.Header = strings.TrimSpace(r.Header.Get(cfg.Header))
	}
	if cfg.Cookie != "" {
		if c, err := r.Cookie(cfg.Cookie); err == nil {
			s.Cookie = strings.TrimSpace(c.Value)
		}
	}
	if id, ok := identity.IDFromContext(r.Context()); ok {
		s.PrincipalID = id
	}
	return s
}
