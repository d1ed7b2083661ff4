// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package neo4j

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/daveshawley/familytree/pkg/types"
)

// graphServer fakes enough of the Neo4j REST API for client tests: the
// hypermedia service root, label lookups, node creation, labeling,
// schema indexes, and the cypher endpoint.
type graphServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []string
	bodies   map[string]string

	// lookupResults is returned from label node lookups; indexes from
	// the schema index listing; cypherRows from the cypher endpoint.
	// cypherFn, when set, picks the rows per query instead.
	lookupResults []map[string]any
	indexes       []indexInfo
	cypherRows    [][]any
	cypherFn      func(query string, params map[string]any) [][]any

	nextNodeID int
}

func newGraphServer(t *testing.T) *graphServer {
	t.Helper()
	g := &graphServer{bodies: map[string]string{}, nextNodeID: 1}
	g.srv = httptest.NewServer(http.HandlerFunc(g.handle))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *graphServer) handle(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	key := r.Method + " " + r.URL.Path
	g.requests = append(g.requests, key)
	if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
		g.bodies[key] = string(data)
	}
	g.mu.Unlock()

	base := "http://" + r.Host
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	switch {
	case r.URL.Path == "/" && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{
			"node":          base + "/node",
			"indexes":       base + "/schema/index",
			"cypher":        base + "/cypher",
			"neo4j_version": "2.0.3",
		})

	case strings.HasPrefix(r.URL.Path, "/label/") && r.Method == http.MethodGet:
		g.mu.Lock()
		results := g.lookupResults
		g.mu.Unlock()
		if results == nil {
			results = []map[string]any{}
		}
		json.NewEncoder(w).Encode(results)

	case r.URL.Path == "/node" && r.Method == http.MethodPost:
		g.mu.Lock()
		id := g.nextNodeID
		g.nextNodeID++
		g.mu.Unlock()
		var props map[string]any
		json.Unmarshal([]byte(g.body(key)), &props)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(nodeResponse(base, id, props))

	case r.URL.Path == "/schema/index" && r.Method == http.MethodGet:
		g.mu.Lock()
		indexes := g.indexes
		g.mu.Unlock()
		if indexes == nil {
			indexes = []indexInfo{}
		}
		json.NewEncoder(w).Encode(indexes)

	case strings.HasPrefix(r.URL.Path, "/schema/index/") && r.Method == http.MethodPost:
		json.NewEncoder(w).Encode(map[string]any{})

	case r.URL.Path == "/cypher" && r.Method == http.MethodPost:
		g.mu.Lock()
		rows := g.cypherRows
		fn := g.cypherFn
		g.mu.Unlock()
		if fn != nil {
			var req cypherRequest
			json.Unmarshal([]byte(g.body(key)), &req)
			rows = fn(req.Query, req.Params)
		}
		if rows == nil {
			rows = [][]any{}
		}
		json.NewEncoder(w).Encode(CypherResult{
			Columns: []string{"a.externalId", "type(r)", "b.externalId"},
			Data:    rows,
		})

	default:
		// node labels / relationships actions
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, "null")
	}
}

func nodeResponse(base string, id int, props map[string]any) map[string]any {
	self := fmt.Sprintf("%s/node/%d", base, id)
	return map[string]any{
		"self":                self,
		"labels":              self + "/labels",
		"create_relationship": self + "/relationships",
		"data":                props,
	}
}

func (g *graphServer) body(key string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bodies[key]
}

func (g *graphServer) requestCount(method, path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	count := 0
	for _, req := range g.requests {
		if req == method+" "+path {
			count++
		}
	}
	return count
}

func (g *graphServer) client() *Client {
	return NewClient(types.GraphConfig{
		BaseURL: g.srv.URL,
		Timeout: 5 * time.Second,
	})
}

// --- service root discovery ---

func TestActionLinksFetchedOnceAndCached(t *testing.T) {
	g := newGraphServer(t)
	c := g.client()

	for i := 0; i < 3; i++ {
		links, err := c.ActionLinks(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if links["node"] != g.srv.URL+"/node" {
			t.Errorf("node action = %q, want %q", links["node"], g.srv.URL+"/node")
		}
	}

	if got := g.requestCount(http.MethodGet, "/"); got != 1 {
		t.Errorf("service root fetched %d times, want 1", got)
	}
}

// --- node creation ---

func TestCreateNodeLabelsAndIndexes(t *testing.T) {
	g := newGraphServer(t)
	c := g.client()

	err := c.CreateNode(context.Background(), "Person", "abc123", map[string]any{"first_name": "ada"})
	if err != nil {
		t.Fatal(err)
	}

	if got := g.requestCount(http.MethodPost, "/node"); got != 1 {
		t.Errorf("node created %d times, want 1", got)
	}

	var props map[string]any
	if err := json.Unmarshal([]byte(g.body("POST /node")), &props); err != nil {
		t.Fatal(err)
	}
	if props["externalId"] != "abc123" {
		t.Errorf("externalId property = %v, want abc123", props["externalId"])
	}
	if props["first_name"] != "ada" {
		t.Errorf("first_name property = %v, want ada", props["first_name"])
	}

	if got := g.requestCount(http.MethodPost, "/node/1/labels"); got != 1 {
		t.Errorf("label assigned %d times, want 1", got)
	}
	if body := g.body("POST /node/1/labels"); body != `"Person"` {
		t.Errorf("label body = %s, want %q", body, "Person")
	}

	if got := g.requestCount(http.MethodPost, "/schema/index/Person"); got != 1 {
		t.Errorf("index created %d times, want 1", got)
	}
	if body := g.body("POST /schema/index/Person"); !strings.Contains(body, "externalId") {
		t.Errorf("index body = %s, want property_keys with externalId", body)
	}
}

func TestCreateNodeSkipsExistingIndex(t *testing.T) {
	g := newGraphServer(t)
	g.indexes = []indexInfo{{Label: "Person", PropertyKeys: []string{"externalId"}}}
	c := g.client()

	if err := c.CreateNode(context.Background(), "Person", "abc123", nil); err != nil {
		t.Fatal(err)
	}

	if got := g.requestCount(http.MethodPost, "/schema/index/Person"); got != 0 {
		t.Errorf("index created %d times, want 0 (already present)", got)
	}
}

func TestEnsureIndexedCachesConfirmedLabels(t *testing.T) {
	g := newGraphServer(t)
	c := g.client()

	for i := 0; i < 3; i++ {
		if err := c.EnsureIndexed(context.Background(), "Person"); err != nil {
			t.Fatal(err)
		}
	}

	if got := g.requestCount(http.MethodGet, "/schema/index"); got != 1 {
		t.Errorf("index listing fetched %d times, want 1", got)
	}
	if got := g.requestCount(http.MethodPost, "/schema/index/Person"); got != 1 {
		t.Errorf("index created %d times, want 1", got)
	}
}

// --- lookups ---

func TestFindByExternalIDNotFound(t *testing.T) {
	g := newGraphServer(t)
	c := g.client()

	_, err := c.FindByExternalID(context.Background(), "Person", "missing")
	if err == nil || !strings.Contains(err.Error(), ErrNotFound.Error()) {
		t.Fatalf("err = %v, want wrapped ErrNotFound", err)
	}
}

func TestHasNodeCachesPositiveAnswers(t *testing.T) {
	g := newGraphServer(t)
	g.lookupResults = []map[string]any{
		nodeResponse(g.srv.URL, 7, map[string]any{"externalId": "abc123"}),
	}
	c := g.client()

	for i := 0; i < 3; i++ {
		found, err := c.HasNode(context.Background(), "Person", "abc123")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("HasNode() = false, want true")
		}
	}

	if got := g.requestCount(http.MethodGet, "/label/Person/nodes"); got != 1 {
		t.Errorf("lookup performed %d times, want 1 (cached afterwards)", got)
	}
}

func TestHasNodeMissing(t *testing.T) {
	g := newGraphServer(t)
	c := g.client()

	found, err := c.HasNode(context.Background(), "Person", "missing")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("HasNode() = true for missing node")
	}
}

// --- relationships ---

func TestRelatePostsCreateRelationship(t *testing.T) {
	g := newGraphServer(t)
	g.lookupResults = []map[string]any{
		nodeResponse(g.srv.URL, 1, map[string]any{"externalId": "parent-id"}),
	}
	c := g.client()

	err := c.Relate(context.Background(), "Person", "parent-id", "child-id", types.RelParentOf)
	if err != nil {
		t.Fatal(err)
	}

	body := g.body("POST /node/1/relationships")
	var req relateRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("relationship body %s: %v", body, err)
	}
	if req.Type != "PARENT_OF" {
		t.Errorf("relationship type = %q, want PARENT_OF", req.Type)
	}
	if !strings.HasSuffix(req.To, "/node/1") {
		t.Errorf("relationship target = %q, want a node URL", req.To)
	}
}

// --- cypher ---

func TestAllRelationsParsesRows(t *testing.T) {
	g := newGraphServer(t)
	g.cypherRows = [][]any{
		{"a", "PARENT_OF", "b"},
		{"a", "SPOUSE_OF", "c"},
		{nil, "PARENT_OF", "d"}, // unidentified node, skipped
	}
	c := g.client()

	relations, err := c.AllRelations(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []types.Relation{
		{FromID: "a", ToID: "b", Type: types.RelParentOf},
		{FromID: "a", ToID: "c", Type: types.RelSpouseOf},
	}
	if len(relations) != len(want) {
		t.Fatalf("got %d relations, want %d: %+v", len(relations), len(want), relations)
	}
	for i := range want {
		if relations[i] != want[i] {
			t.Errorf("relation %d = %+v, want %+v", i, relations[i], want[i])
		}
	}
}

// directedEdges serves a single parent->child edge the way the real
// cypher endpoint would: the outgoing query matches only when the
// bound node is the parent, the incoming query only when it is the
// child.
func directedEdges(query string, params map[string]any) [][]any {
	id, _ := params["id"].(string)
	edge := [][]any{{"parent-id", "PARENT_OF", "child-id"}}
	if strings.Contains(query, "(b {externalId:") {
		if id == "child-id" {
			return edge
		}
		return nil
	}
	if id == "parent-id" {
		return edge
	}
	return nil
}

func TestRelationsSeenFromEitherEnd(t *testing.T) {
	g := newGraphServer(t)
	g.cypherFn = directedEdges
	c := g.client()

	want := types.Relation{FromID: "parent-id", ToID: "child-id", Type: types.RelParentOf}
	for _, id := range []string{"parent-id", "child-id"} {
		relations, err := c.Relations(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if len(relations) != 1 || relations[0] != want {
			t.Errorf("Relations(%q) = %+v, want [%+v]", id, relations, want)
		}
	}
}

// --- error surface ---

func TestDoSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(types.GraphConfig{BaseURL: srv.URL, Timeout: time.Second})
	_, err := c.ActionLinks(context.Background())
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Fatalf("err = %v, want HTTP 500 mention", err)
	}
}
