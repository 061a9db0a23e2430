package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type Route struct {
	Method  string `yaml:"method"`
	Pattern string `yaml:"pattern"`
	MaxRPM  uint32 `yaml:"max_rpm"`
}

func (r Route) String() string { return r.Method + " " + r.Pattern }

var supportedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

func (r Route) Validate() error {
	if !supportedMethods[r.Method] {
		return fmt.Errorf("route %q: unsupported method %q", r.String(), r.Method)
	}
	if !strings.HasPrefix(r.Pattern, "/") {
		return fmt.Errorf("route %q: pattern must start with /", r.String())
	}
	return nil
}

// DefaultRoutes são as rotas do vault com seus orçamentos por minuto.
func DefaultRoutes() []Route {
	return []Route{
		{Method: http.MethodPost, Pattern: "/vault", MaxRPM: 3},
		{Method: http.MethodGet, Pattern: "/vault/items", MaxRPM: 1200},
		{Method: http.MethodPut, Pattern: "/vault/items/{id}", MaxRPM: 60},
	}
}

// ParseRoutes lê "METHOD /pattern=MAX_RPM" separados por vírgula,
// ex.: "POST /vault=3,GET /vault/items=1200".
func ParseRoutes(s string) ([]Route, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty route list")
	}

	var routes []Route
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		entry, rpm, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("route %q must follow METHOD /pattern=MAX_RPM", item)
		}
		method, pattern, ok := strings.Cut(strings.TrimSpace(entry), " ")
		if !ok {
			return nil, fmt.Errorf("route %q must follow METHOD /pattern=MAX_RPM", item)
		}
		maxRPM, err := strconv.ParseUint(strings.TrimSpace(rpm), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("route %q: invalid max rpm: %w", item, err)
		}

		rt := Route{
			Method:  strings.ToUpper(strings.TrimSpace(method)),
			Pattern: strings.TrimSpace(pattern),
			MaxRPM:  uint32(maxRPM),
		}
		if err := rt.Validate(); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}

	if len(routes) == 0 {
		return nil, errors.New("empty route list")
	}
	return routes, nil
}
