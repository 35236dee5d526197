package topology

import "testing"

func TestNode_SetParentUpdatesBothEnds(t *testing.T) {
	parent := &Node{ID: 1}
	child := &Node{ID: 2}
	child.SetParent(parent)
	if child.Parent != parent {
		t.Fatalf("expected child.Parent to be set")
	}
	if len(parent.Children) != 1 || parent.Children[0] != child {
		t.Fatalf("expected parent.Children to contain child")
	}

	other := &Node{ID: 3}
	child.SetParent(other)
	if len(parent.Children) != 0 {
		t.Fatalf("expected child detached from its old parent")
	}
	if len(other.Children) != 1 || other.Children[0] != child {
		t.Fatalf("expected child attached to its new parent")
	}
}

func TestNode_SetSuccessorDoesNotSetParent(t *testing.T) {
	a := &Node{ID: 1}
	b := &Node{ID: 2}
	a.SetSuccessor(b)
	if len(a.Children) != 1 || a.Children[0] != b {
		t.Fatalf("expected a's successor to be b")
	}
	if b.Parent != nil {
		t.Fatalf("ring successors must not imply a parent relation")
	}
}

func TestBalancedTree_RootIsHeadAndChildrenAreParented(t *testing.T) {
	s := NewBalancedTreeStrategy()
	n := newTestNetwork(7, s)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	root := s.Root()
	if root == nil {
		t.Fatalf("expected a root node after Init")
	}
	if !root.Head {
		t.Fatalf("expected root node to carry Head=true")
	}
	if root.Type != TreeStructure {
		t.Fatalf("expected root node Type=TREE, got %v", root.Type)
	}
	if len(root.Children) == 0 {
		t.Fatalf("expected root to have at least one child")
	}
	for _, child := range root.Children {
		if child.Parent != root {
			t.Fatalf("expected child's Parent to be root")
		}
	}
}

func TestBalancedTree_RootIsSetExactlyOnce(t *testing.T) {
	s := NewBalancedTreeStrategy()
	n := newTestNetwork(4, s)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	first := s.Root()
	if err := n.SetTargetMirrorCount(6, 1); err != nil {
		t.Fatalf("SetTargetMirrorCount: %v", err)
	}
	if s.Root() != first {
		t.Fatalf("expected root to remain the node bound on first Init, not rebound on AddMirrors")
	}
}

func TestStar_CentreIsHeadAndLeavesAreItsChildren(t *testing.T) {
	s := NewStarStrategy()
	n := newTestNetwork(4, s)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	centre := s.Root()
	if centre == nil || !centre.Head {
		t.Fatalf("expected the star's centre node to be the root with Head=true")
	}
	if centre.Type != StarStructure {
		t.Fatalf("expected centre node Type=STAR, got %v", centre.Type)
	}
	if len(centre.Children) != 3 {
		t.Fatalf("expected centre to have 3 leaf children, got %d", len(centre.Children))
	}
	for _, leaf := range centre.Children {
		if leaf.Parent != centre {
			t.Fatalf("expected every leaf's Parent to be the centre")
		}
	}
}

func TestRing_NodesFormACyclicSuccessorChain(t *testing.T) {
	s := NewRingStrategy()
	n := newTestNetwork(5, s)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	head := s.Root()
	if head == nil || !head.Head {
		t.Fatalf("expected a head node after Init")
	}
	visited := map[uint64]bool{}
	cur := head
	for i := 0; i < 5; i++ {
		if visited[cur.ID] {
			t.Fatalf("successor chain revisited node %d before completing the cycle", cur.ID)
		}
		visited[cur.ID] = true
		if len(cur.Children) != 1 {
			t.Fatalf("expected every ring node to have exactly one successor, node %d has %d", cur.ID, len(cur.Children))
		}
		cur = cur.Children[0]
	}
	if cur != head {
		t.Fatalf("expected the successor chain to return to the head after 5 steps")
	}
}
