// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package neo4j implements the graph backend over the Neo4j REST API.
//
// The REST API is hypermedia driven: the service root response maps
// action names ("node", "cypher", "indexes", ...) to endpoint URLs. The
// client discovers the map on first use and accepts action names in
// place of URLs, so the rest of the code never hard-codes server paths.
package neo4j

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/daveshawley/familytree/internal/httputil"
	"github.com/daveshawley/familytree/internal/urlutil"
	"github.com/daveshawley/familytree/pkg/types"
)

// externalIDProperty is the node property holding the opaque identifier
// assigned by the storage layer.
const externalIDProperty = "externalId"

const defaultBaseURL = "http://localhost:7474/db/data"

// ErrNotFound reports that no node carries the requested identifier.
var ErrNotFound = errors.New("node not found")

// Client talks to a Neo4j server over its REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	username   string
	password   string

	mu      sync.Mutex
	actions map[string]string

	// indexed remembers labels whose externalId index is confirmed;
	// nodes remembers self URLs by external ID to spare lookups.
	indexed *cache.Cache
	nodes   *cache.Cache
}

// NewClient creates a graph client for the configured server.
func NewClient(cfg types.GraphConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		username:   cfg.Username,
		password:   cfg.Password,
		indexed:    cache.New(cache.NoExpiration, 0),
		nodes:      cache.New(5*time.Minute, 10*time.Minute),
	}
}

// do issues a request against the graph server. target may be an
// absolute URL, a service-root action name, or a path relative to the
// base URL. A non-nil body is sent as JSON; a non-nil out receives the
// decoded response.
func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	reqURL, err := c.resolve(ctx, target)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return fmt.Errorf("graph request %s %s: %w", method, reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("graph request %s %s returned HTTP %d", method, reqURL, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", reqURL, err)
	}
	return nil
}

// resolve maps an action name or relative path to a request URL.
func (c *Client) resolve(ctx context.Context, target string) (string, error) {
	if target == "" {
		return c.baseURL, nil
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target, nil
	}

	links, err := c.ActionLinks(ctx)
	if err != nil {
		return "", err
	}
	if link, ok := links[target]; ok {
		return link, nil
	}
	return urlutil.Append(c.baseURL, target), nil
}

// ActionLinks returns the service root's map of action name to endpoint
// URL, fetching it on first use.
func (c *Client) ActionLinks(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.actions != nil {
		return c.actions, nil
	}

	var root map[string]any
	if err := c.do(ctx, http.MethodGet, "", nil, &root); err != nil {
		return nil, fmt.Errorf("fetching service root: %w", err)
	}

	actions := make(map[string]string, len(root))
	for name, value := range root {
		if link, ok := value.(string); ok {
			actions[name] = link
		}
	}
	c.actions = actions
	return actions, nil
}

// indexInfo is one entry from the schema index listing.
type indexInfo struct {
	Label        string   `json:"label"`
	PropertyKeys []string `json:"property_keys"`
}

// EnsureIndexed guarantees the label has an index on the externalId
// property, creating it when missing. Confirmed labels are cached for
// the lifetime of the client.
func (c *Client) EnsureIndexed(ctx context.Context, label string) error {
	if _, ok := c.indexed.Get(label); ok {
		return nil
	}

	links, err := c.ActionLinks(ctx)
	if err != nil {
		return err
	}
	indexesURL, ok := links["indexes"]
	if !ok {
		return fmt.Errorf("graph server exposes no indexes action")
	}

	var existing []indexInfo
	if err := c.do(ctx, http.MethodGet, indexesURL, nil, &existing); err != nil {
		return fmt.Errorf("listing indexes: %w", err)
	}
	for _, idx := range existing {
		if idx.Label != label {
			continue
		}
		for _, key := range idx.PropertyKeys {
			if key == externalIDProperty {
				c.indexed.SetDefault(label, true)
				return nil
			}
		}
	}

	body := map[string]any{"property_keys": []string{externalIDProperty}}
	if err := c.do(ctx, http.MethodPost, urlutil.Append(indexesURL, label), body, nil); err != nil {
		return fmt.Errorf("creating %s index: %w", label, err)
	}
	c.indexed.SetDefault(label, true)
	return nil
}

// FindByExternalID retrieves the node carrying the identifier under the
// given label. Returns ErrNotFound when no such node exists.
func (c *Client) FindByExternalID(ctx context.Context, label, externalID string) (*Node, error) {
	params := url.Values{externalIDProperty: {strconv.Quote(externalID)}}
	target := urlutil.Append(c.baseURL, "label", label, "nodes") + "?" + params.Encode()

	var raw []map[string]any
	if err := c.do(ctx, http.MethodGet, target, nil, &raw); err != nil {
		return nil, fmt.Errorf("looking up %s %s: %w", label, externalID, err)
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	node := newNode(raw[0])
	c.nodes.SetDefault(externalID, node.Self())
	return node, nil
}

// HasNode reports whether a node with the identifier exists under the
// label. Positive answers are cached.
func (c *Client) HasNode(ctx context.Context, label, externalID string) (bool, error) {
	if _, ok := c.nodes.Get(externalID); ok {
		return true, nil
	}
	_, err := c.FindByExternalID(ctx, label, externalID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateNode creates a labeled node carrying the identifier and data
// properties, and makes sure the label is indexed by external ID.
func (c *Client) CreateNode(ctx context.Context, label, externalID string, props map[string]any) error {
	full := make(map[string]any, len(props)+1)
	for k, v := range props {
		full[k] = v
	}
	full[externalIDProperty] = externalID

	var raw map[string]any
	if err := c.do(ctx, http.MethodPost, "node", full, &raw); err != nil {
		return fmt.Errorf("creating %s node: %w", label, err)
	}
	node := newNode(raw)

	labelsURL, ok := node.ActionLink("labels")
	if !ok {
		return fmt.Errorf("node response carries no labels action")
	}
	if err := c.do(ctx, http.MethodPost, labelsURL, label, nil); err != nil {
		return fmt.Errorf("labeling node %s: %w", externalID, err)
	}

	if err := c.EnsureIndexed(ctx, label); err != nil {
		return err
	}

	c.nodes.SetDefault(externalID, node.Self())
	return nil
}

// relateRequest is the body for the create_relationship action.
type relateRequest struct {
	To   string `json:"to"`
	Type string `json:"type"`
}

// Relate creates a directed relationship between two existing nodes
// identified by their external IDs. Relationship types are stored upper
// case in the graph ("parent_of" becomes "PARENT_OF").
func (c *Client) Relate(ctx context.Context, label, fromID, toID string, rel types.RelationType) error {
	from, err := c.FindByExternalID(ctx, label, fromID)
	if err != nil {
		return fmt.Errorf("relating %s: %w", fromID, err)
	}
	to, err := c.FindByExternalID(ctx, label, toID)
	if err != nil {
		return fmt.Errorf("relating %s: %w", toID, err)
	}

	createURL, ok := from.ActionLink("create_relationship")
	if !ok {
		return fmt.Errorf("node response carries no create_relationship action")
	}
	body := relateRequest{To: to.Self(), Type: strings.ToUpper(string(rel))}
	if err := c.do(ctx, http.MethodPost, createURL, body, nil); err != nil {
		return fmt.Errorf("creating %s relationship: %w", rel, err)
	}
	return nil
}

// cypherRequest and cypherResult model the legacy cypher endpoint.
type cypherRequest struct {
	Query  string         `json:"query"`
	Params map[string]any `json:"params,omitempty"`
}

// CypherResult holds the tabular response of a Cypher query.
type CypherResult struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// Cypher runs a query through the server's cypher endpoint.
func (c *Client) Cypher(ctx context.Context, query string, params map[string]any) (*CypherResult, error) {
	var result CypherResult
	if err := c.do(ctx, http.MethodPost, "cypher", cypherRequest{Query: query, Params: params}, &result); err != nil {
		return nil, fmt.Errorf("cypher query: %w", err)
	}
	return &result, nil
}

// Relations returns the relationships the identified node participates
// in, incoming as well as outgoing. Rows always read (from, type, to)
// in the direction the edge was recorded.
func (c *Client) Relations(ctx context.Context, externalID string) ([]types.Relation, error) {
	queries := []string{
		`MATCH (a {externalId: {id}})-[r]->(b) RETURN a.externalId, type(r), b.externalId`,
		`MATCH (a)-[r]->(b {externalId: {id}}) RETURN a.externalId, type(r), b.externalId`,
	}

	var relations []types.Relation
	for _, query := range queries {
		result, err := c.Cypher(ctx, query, map[string]any{"id": externalID})
		if err != nil {
			return nil, err
		}
		relations = append(relations, relationsFromRows(result.Data)...)
	}
	return relations, nil
}

// AllRelations returns every relationship in the graph as identifier
// triples. The inference engine consumes this to derive new facts.
func (c *Client) AllRelations(ctx context.Context) ([]types.Relation, error) {
	result, err := c.Cypher(ctx,
		`MATCH (a)-[r]->(b) RETURN a.externalId, type(r), b.externalId`, nil,
	)
	if err != nil {
		return nil, err
	}
	return relationsFromRows(result.Data), nil
}

// relationsFromRows converts cypher rows of (from, type, to) into
// Relation values, skipping rows with missing identifiers.
func relationsFromRows(rows [][]any) []types.Relation {
	relations := make([]types.Relation, 0, len(rows))
	for _, row := range rows {
		if len(row) != 3 {
			continue
		}
		from, ok1 := row[0].(string)
		relType, ok2 := row[1].(string)
		to, ok3 := row[2].(string)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		relations = append(relations, types.Relation{
			FromID: from,
			ToID:   to,
			Type:   types.RelationType(strings.ToLower(relType)),
		})
	}
	return relations
}
