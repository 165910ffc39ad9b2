package model

// RelationType represents the type of relationship between entities
type RelationType string

const (
	RelationTypeCooccurrence RelationType = "co-occurrence"
	RelationTypeTemporal     RelationType = "temporal"
	RelationTypeSemantic     RelationType = "semantic"
	RelationTypeMultiModal   RelationType = "multi-modal"
	RelationTypeExternal     RelationType = "external"
)

// Edge represents an undirected relationship between two entities. At most
// one edge exists per unordered endpoint pair; repeated registrations
// accumulate Weight and Frequency instead of creating parallel edges, and
// RelationType keeps the first type assigned. Timestamp holds the earliest
// timestamp seen for the pair (RFC 3339 strings compare correctly).
type Edge struct {
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	RelationType RelationType `json:"relation_type"`
	Weight       float64      `json:"weight"`
	Frequency    int          `json:"frequency"`
	Timestamp    string       `json:"timestamp,omitempty"`
	Metadata     Metadata     `json:"metadata,omitempty"`
}

// GraphStatistics summarizes the current graph
type GraphStatistics struct {
	NodeCount           int                  `json:"node_count"`
	EdgeCount           int                  `json:"edge_count"`
	AvgDegree           float64              `json:"avg_degree"`
	MaxDegree           int                  `json:"max_degree"`
	MinDegree           int                  `json:"min_degree"`
	AvgEdgeWeight       float64              `json:"avg_edge_weight"`
	TotalWeight         float64              `json:"total_weight"`
	Density             float64              `json:"density"`
	RelationTypes       map[RelationType]int `json:"relation_type_distribution"`
	ConnectedComponents int                  `json:"connected_components"`
}

// Neighbor is one adjacency entry: the neighboring entity and the weight of
// the connecting edge.
type Neighbor struct {
	EntityID string  `json:"entity_id"`
	Weight   float64 `json:"weight"`
}

// EgoNetwork is the induced subgraph reachable from EgoNode within Depth hops
type EgoNetwork struct {
	EgoNode   string   `json:"ego_node"`
	Depth     int      `json:"depth"`
	Nodes     []string `json:"nodes"`
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
	Edges     []*Edge  `json:"edges"`
}

// GraphExport is the serializable snapshot of the full graph
type GraphExport struct {
	Nodes      []string        `json:"nodes"`
	Edges      []*Edge         `json:"edges"`
	Statistics GraphStatistics `json:"statistics"`
}
