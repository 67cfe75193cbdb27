// Package scimtest runs an in-memory SCIM 2.0 server for exercising the
// probe and client. The server supports User, Group, Agent, and
// AgenticApplication CRUD against per-endpoint stores, plus the three
// discovery endpoints, and can be configured to misbehave in the ways
// deployed servers commonly do: omitting id or meta, echoing passwords,
// throttling with 429, serving stale reads after PUT, rejecting filters,
// or answering with the plain JSON media type.
package scimtest

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/scimtools/scim-sanity/schema"
)

// Config selects which resource types the server exposes and which
// non-conformances it exhibits. The zero value is a fully conformant
// server with the four default resource types.
type Config struct {
	// MissingID omits id from resource responses.
	MissingID bool
	// MissingMeta omits meta from resource responses.
	MissingMeta bool
	// MissingMetaFields keeps meta but drops created and lastModified.
	MissingMetaFields bool
	// PasswordInResponse echoes the stored password back to the client.
	PasswordInResponse bool
	// ThrottleCount makes the first N requests answer 429 with
	// Retry-After: 0.
	ThrottleCount int
	// StaleAfterPUT serves the pre-PUT resource state on the first GET
	// after each PUT, simulating eventual consistency.
	StaleAfterPUT bool
	// RejectFilters answers 400 to any request carrying a filter query
	// parameter.
	RejectFilters bool
	// ContentTypeJSON responds with application/json instead of
	// application/scim+json.
	ContentTypeJSON bool
	// SupportedResources lists resource type names to expose. Nil means
	// User, Group, Agent, and AgenticApplication.
	SupportedResources []string
}

// Server is a running in-memory SCIM server bound to a loopback port.
type Server struct {
	cfg        Config
	listener   net.Listener
	httpServer *http.Server
	baseURL    string

	mu                sync.Mutex
	stores            map[string]map[string]map[string]any
	stale             map[string]map[string]any
	throttleRemaining int
	requests          int
}

var defaultResources = []string{"User", "Group", "Agent", "AgenticApplication"}

// Start launches a server on 127.0.0.1 with an OS-assigned port. Close
// must be called to release it.
func Start(cfg Config) (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	resources := cfg.SupportedResources
	if resources == nil {
		resources = defaultResources
	}

	s := &Server{
		cfg:               cfg,
		listener:          listener,
		baseURL:           "http://" + listener.Addr().String(),
		stores:            make(map[string]map[string]map[string]any, len(resources)),
		stale:             make(map[string]map[string]any),
		throttleRemaining: cfg.ThrottleCount,
	}
	s.cfg.SupportedResources = resources

	for _, rt := range resources {
		s.stores[endpointFor(rt)] = make(map[string]map[string]any)
	}

	router := httprouter.New()
	router.GET("/:resource", s.getCollection)
	router.POST("/:resource", s.create)
	router.GET("/:resource/:id", s.getResource)
	router.PUT("/:resource/:id", s.replace)
	router.PATCH("/:resource/:id", s.patch)
	router.DELETE("/:resource/:id", s.remove)

	s.httpServer = &http.Server{
		Handler:           s.countRequests(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() { _ = s.httpServer.Serve(listener) }()

	return s, nil
}

// BaseURL is the root URL of the running server.
func (s *Server) BaseURL() string {
	return s.baseURL
}

// Close shuts the server down.
func (s *Server) Close() error {
	return s.httpServer.Close()
}

// Count returns the number of stored resources on an endpoint such as
// "Users". Unknown endpoints count zero.
func (s *Server) Count(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.stores[endpoint])
}

// RequestCount returns the total number of HTTP requests received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.requests
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// throttled consumes one unit of the throttle budget and answers 429
// when the budget is not yet exhausted.
func (s *Server) throttled(w http.ResponseWriter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.throttleRemaining <= 0 {
		return false
	}

	s.throttleRemaining--

	w.Header().Set("Retry-After", "0")
	s.writeJSONLocked(w, http.StatusTooManyRequests, map[string]any{
		"schemas": []string{schema.URNError},
		"status":  "429",
		"detail":  "Too Many Requests",
	})

	return true
}

func (s *Server) contentType() string {
	if s.cfg.ContentTypeJSON {
		return "application/json"
	}

	return schema.ContentType
}

// writeJSONLocked writes a JSON response. Safe to call with or without
// the mutex held since it only reads immutable config.
func (s *Server) writeJSONLocked(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", s.contentType())
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSONLocked(w, status, map[string]any{
		"schemas": []string{schema.URNError},
		"status":  fmt.Sprintf("%d", status),
		"detail":  detail,
	})
}

// makeMeta builds the server-managed meta object for a resource.
func (s *Server) makeMeta(endpoint, id string) map[string]any {
	now := time.Now().UTC().Format(time.RFC3339)

	meta := map[string]any{
		"resourceType": resourceTypeFor(endpoint),
		"created":      now,
		"lastModified": now,
		"location":     fmt.Sprintf("%s/%s/%s", s.baseURL, endpoint, id),
		"version":      fmt.Sprintf(`W/"%s"`, shortID(id)),
	}

	if s.cfg.MissingMetaFields {
		delete(meta, "created")
		delete(meta, "lastModified")
	}

	return meta
}

// enrich adds server-managed fields to a stored resource, applying the
// configured non-conformances.
func (s *Server) enrich(endpoint, id string, data map[string]any) map[string]any {
	result := make(map[string]any, len(data)+2)
	for k, v := range data {
		result[k] = v
	}

	result["id"] = id
	if s.cfg.MissingID {
		delete(result, "id")
	}

	if !s.cfg.MissingMeta {
		result["meta"] = s.makeMeta(endpoint, id)
	}

	if !s.cfg.PasswordInResponse {
		delete(result, "password")
	}

	return result
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if s.throttled(w) {
		return
	}

	endpoint := ps.ByName("resource")

	switch endpoint {
	case "ServiceProviderConfig":
		s.writeJSONLocked(w, http.StatusOK, s.serviceProviderConfig())

		return
	case "Schemas":
		s.writeJSONLocked(w, http.StatusOK, emptyList())

		return
	case "ResourceTypes":
		s.writeJSONLocked(w, http.StatusOK, s.resourceTypes())

		return
	}

	s.mu.Lock()
	store, ok := s.stores[endpoint]
	if !ok {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "Unknown resource type: "+endpoint)

		return
	}

	if s.cfg.RejectFilters && r.URL.Query().Get("filter") != "" {
		s.mu.Unlock()
		s.writeError(w, http.StatusBadRequest, "Filtering is not supported")

		return
	}

	resources := make([]any, 0, len(store))
	for id, data := range store {
		resources = append(resources, s.enrich(endpoint, id, data))
	}
	s.mu.Unlock()

	s.writeJSONLocked(w, http.StatusOK, map[string]any{
		"schemas":      []string{schema.URNListResponse},
		"totalResults": len(resources),
		"Resources":    resources,
		"startIndex":   1,
		"itemsPerPage": len(resources),
	})
}

func (s *Server) getResource(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	if s.throttled(w) {
		return
	}

	endpoint, id := ps.ByName("resource"), ps.ByName("id")

	s.mu.Lock()
	store, ok := s.stores[endpoint]
	if !ok {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "Unknown resource type: "+endpoint)

		return
	}

	data, found := store[id]
	if !found {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "Resource not found")

		return
	}

	// Serve the stale snapshot once, then fall back to current state.
	staleKey := endpoint + "/" + id
	if snapshot, hasStale := s.stale[staleKey]; hasStale {
		delete(s.stale, staleKey)
		data = snapshot
	}

	enriched := s.enrich(endpoint, id, data)
	s.mu.Unlock()

	s.writeJSONLocked(w, http.StatusOK, enriched)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if s.throttled(w) {
		return
	}

	endpoint := ps.ByName("resource")

	s.mu.Lock()
	store, ok := s.stores[endpoint]
	s.mu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "Unknown resource type: "+endpoint)

		return
	}

	body := readBody(r)
	if body == nil {
		s.writeError(w, http.StatusBadRequest, "Invalid or missing JSON body")

		return
	}

	if schemas, isList := body["schemas"].([]any); !isList || len(schemas) == 0 {
		s.writeError(w, http.StatusBadRequest, "Missing or invalid 'schemas' field")

		return
	}

	if detail := missingRequired(resourceTypeFor(endpoint), body); detail != "" {
		s.writeError(w, http.StatusBadRequest, detail)

		return
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")

	s.mu.Lock()
	store[id] = body
	enriched := s.enrich(endpoint, id, body)
	s.mu.Unlock()

	w.Header().Set("Location", fmt.Sprintf("%s/%s/%s", s.baseURL, endpoint, id))

	if meta, isMap := enriched["meta"].(map[string]any); isMap {
		if version, _ := meta["version"].(string); version != "" {
			w.Header().Set("ETag", version)
		}
	}

	s.writeJSONLocked(w, http.StatusCreated, enriched)
}

func (s *Server) replace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if s.throttled(w) {
		return
	}

	endpoint, id := ps.ByName("resource"), ps.ByName("id")

	body := readBody(r)

	s.mu.Lock()
	store, ok := s.stores[endpoint]
	if !ok {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "Resource not found")

		return
	}

	previous, found := store[id]
	if !found {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "Resource not found")

		return
	}

	if body == nil {
		s.mu.Unlock()
		s.writeError(w, http.StatusBadRequest, "Invalid or missing JSON body")

		return
	}

	if s.cfg.StaleAfterPUT {
		s.stale[endpoint+"/"+id] = previous
	}

	store[id] = body
	enriched := s.enrich(endpoint, id, body)
	s.mu.Unlock()

	s.writeJSONLocked(w, http.StatusOK, enriched)
}

// patch applies add, replace, and remove operations on top-level
// attributes. Filter-expression paths are not interpreted.
func (s *Server) patch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if s.throttled(w) {
		return
	}

	endpoint, id := ps.ByName("resource"), ps.ByName("id")

	body := readBody(r)

	s.mu.Lock()
	store, ok := s.stores[endpoint]
	if !ok {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "Resource not found")

		return
	}

	resource, found := store[id]
	if !found {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "Resource not found")

		return
	}

	if body == nil {
		s.mu.Unlock()
		s.writeError(w, http.StatusBadRequest, "Invalid or missing JSON body")

		return
	}

	ops, _ := body["Operations"].([]any)
	for _, rawOp := range ops {
		op, isMap := rawOp.(map[string]any)
		if !isMap {
			continue
		}

		verb, _ := op["op"].(string)
		path, _ := op["path"].(string)

		switch {
		case (verb == "add" || verb == "replace") && path != "":
			resource[path] = op["value"]
		case verb == "remove" && path != "":
			delete(resource, path)
		}
	}

	store[id] = resource
	enriched := s.enrich(endpoint, id, resource)
	s.mu.Unlock()

	s.writeJSONLocked(w, http.StatusOK, enriched)
}

func (s *Server) remove(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	if s.throttled(w) {
		return
	}

	endpoint, id := ps.ByName("resource"), ps.ByName("id")

	s.mu.Lock()
	store, ok := s.stores[endpoint]
	if !ok {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "Resource not found")

		return
	}

	if _, found := store[id]; !found {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "Resource not found")

		return
	}

	delete(store, id)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serviceProviderConfig() map[string]any {
	return map[string]any{
		"schemas":        []string{schema.URNServiceProviderConfig},
		"patch":          map[string]any{"supported": true},
		"bulk":           map[string]any{"supported": false},
		"filter":         map[string]any{"supported": true, "maxResults": 200},
		"changePassword": map[string]any{"supported": false},
		"sort":           map[string]any{"supported": false},
		"etag":           map[string]any{"supported": false},
		"authenticationSchemes": []any{
			map[string]any{"type": "oauthbearertoken", "name": "Bearer"},
		},
	}
}

func (s *Server) resourceTypes() map[string]any {
	resources := make([]any, 0, len(s.cfg.SupportedResources))

	for _, rt := range s.cfg.SupportedResources {
		resources = append(resources, map[string]any{
			"schemas":  []string{schema.URNResourceType},
			"name":     rt,
			"endpoint": "/" + endpointFor(rt),
			"schema":   "urn:ietf:params:scim:schemas:core:2.0:" + rt,
		})
	}

	return map[string]any{
		"schemas":      []string{schema.URNListResponse},
		"totalResults": len(resources),
		"Resources":    resources,
	}
}

func emptyList() map[string]any {
	return map[string]any{
		"schemas":      []string{schema.URNListResponse},
		"totalResults": 0,
		"Resources":    []any{},
	}
}

func missingRequired(resourceType string, body map[string]any) string {
	switch resourceType {
	case "User":
		if _, ok := body["userName"]; !ok {
			return "Missing required attribute: userName"
		}
	case "Group":
		if _, ok := body["displayName"]; !ok {
			return "Missing required attribute: displayName"
		}
	case "Agent", "AgenticApplication":
		if _, ok := body["name"]; !ok {
			return "Missing required attribute: name"
		}
	}

	return ""
}

func readBody(r *http.Request) map[string]any {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil
	}

	return body
}

func endpointFor(resourceType string) string {
	return resourceType + "s"
}

func resourceTypeFor(endpoint string) string {
	return strings.TrimSuffix(endpoint, "s")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
