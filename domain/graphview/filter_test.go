package graphview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionNode(id, standard, cluster, title string) Node {
	return Node{
		ID:            id,
		Kind:          KindSection,
		Standard:      standard,
		SectionNumber: "4.2",
		Title:         title,
		ClusterID:     cluster,
	}
}

func clusterNode(id, name string, standards ...string) Node {
	return Node{
		ID:        id,
		Kind:      KindCluster,
		Name:      name,
		Size:      len(standards),
		Standards: standards,
	}
}

func TestMatchesSearch_Sections(t *testing.T) {
	n := sectionNode("s1", "PMBOK", "c1", "Risk Management Planning")

	assert.True(t, MatchesSearch(n, ""))
	assert.True(t, MatchesSearch(n, "risk"))
	assert.True(t, MatchesSearch(n, "4.2"))
	assert.True(t, MatchesSearch(n, "pmbok"))
	assert.False(t, MatchesSearch(n, "quality"))
}

func TestMatchesSearch_Clusters(t *testing.T) {
	n := clusterNode("c1", "Stakeholder Engagement", "PMBOK", "PRINCE2")

	assert.True(t, MatchesSearch(n, "stakeholder"))
	assert.True(t, MatchesSearch(n, "prince2"))
	assert.False(t, MatchesSearch(n, "iso"))
}

func TestMatchesSearch_UnknownKindNeverMatches(t *testing.T) {
	n := Node{ID: "x", Kind: NodeKind("mystery"), Title: "Risk"}
	assert.False(t, MatchesSearch(n, "risk"))
}

func TestMatchesStandards(t *testing.T) {
	section := sectionNode("s1", "PMBOK", "", "Risk")
	cluster := clusterNode("c1", "Planning", "PRINCE2", "ISO_21502")

	t.Run("empty filter matches all", func(t *testing.T) {
		assert.True(t, MatchesStandards(section, nil))
		assert.True(t, MatchesStandards(cluster, map[string]bool{}))
	})

	t.Run("section needs its own standard active", func(t *testing.T) {
		assert.True(t, MatchesStandards(section, map[string]bool{"PMBOK": true}))
		assert.False(t, MatchesStandards(section, map[string]bool{"PRINCE2": true}))
	})

	t.Run("cluster needs any member standard active", func(t *testing.T) {
		assert.True(t, MatchesStandards(cluster, map[string]bool{"ISO_21502": true}))
		assert.False(t, MatchesStandards(cluster, map[string]bool{"PMBOK": true}))
	})
}

func TestFilterNodes_PreservesOrder(t *testing.T) {
	nodes := []Node{
		sectionNode("s1", "PMBOK", "c1", "Risk Planning"),
		sectionNode("s2", "PRINCE2", "c1", "Risk Theme"),
		sectionNode("s3", "PMBOK", "c2", "Quality Control"),
	}

	out := FilterNodes(nodes, "risk", map[string]bool{"PMBOK": true, "PRINCE2": true})
	require.Len(t, out, 2)
	assert.Equal(t, "s1", out[0].ID)
	assert.Equal(t, "s2", out[1].ID)
}

func TestFilterEdges_DropsDanglingEndpoints(t *testing.T) {
	nodes := []Node{
		sectionNode("s1", "PMBOK", "c1", "Risk"),
		sectionNode("s2", "PRINCE2", "c1", "Risk"),
	}
	edges := []Edge{
		{Source: "s1", Target: "s2", Similarity: 0.8, Kind: EdgeCrossStandard},
		{Source: "s1", Target: "gone", Similarity: 0.9, Kind: EdgeWithinStandard},
		{Source: "gone", Target: "s2", Similarity: 0.7, Kind: EdgeWithinStandard},
	}

	out := FilterEdges(edges, nodes)
	require.Len(t, out, 1)
	assert.Equal(t, "s1", out[0].Source)
	assert.Equal(t, "s2", out[0].Target)
}

func TestConnectionCounts(t *testing.T) {
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "c"},
		{Source: "b", Target: "c"},
	}

	counts := ConnectionCounts(edges)
	assert.Equal(t, 2, counts["a"])
	assert.Equal(t, 2, counts["b"])
	assert.Equal(t, 2, counts["c"])
	assert.Equal(t, 0, counts["d"])
}
