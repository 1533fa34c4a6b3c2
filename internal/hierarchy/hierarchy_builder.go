package hierarchy

import (
	"sort"
	"strings"

	"go-orgflow/internal/employee"
)

// rolePriority orders siblings with equal subtree sizes: admin-like roles
// first, plain contributors last.
var rolePriority = map[string]int{
	employee.RolePlatformAdmin: 0,
	employee.RoleOrgAdmin:      1,
	employee.RoleHR:            2,
	employee.RoleManager:       3,
	employee.RoleAccountant:    4,
	employee.RoleEmployee:      5,
}

const unknownRolePriority = 99

type BuildResult struct {
	Forest     []*OrgChartNode
	Unassigned []UnassignedEmployee
	Stats      OrgStats
	// CycleDetected flags a managerId chain that loops back on itself.
	// The build still terminates; the offending employees are rendered
	// once as fallback roots.
	CycleDetected bool
}

// Build converts a flat tenant-scoped employee list into a reporting forest.
// Pure function: it never touches the store and never follows managerId
// pointers beyond a map lookup, so corrupt input cannot make it loop.
func Build(employees []employee.Employee) BuildResult {
	index := make(map[string]employee.Employee, len(employees))
	order := make([]string, 0, len(employees))
	children := make(map[string][]string, len(employees))
	var rootIDs []string

	for _, e := range employees {
		id := e.ID.String()
		index[id] = e
		order = append(order, id)
	}

	for _, id := range order {
		e := index[id]
		if e.ManagerID == nil {
			rootIDs = append(rootIDs, id)
			continue
		}
		managerID := e.ManagerID.String()
		if _, ok := index[managerID]; !ok {
			// Manager reference points outside the loaded set; degrade
			// to root instead of dropping the record.
			rootIDs = append(rootIDs, id)
			continue
		}
		children[managerID] = append(children[managerID], id)
	}

	b := &builder{
		index:    index,
		children: children,
		visited:  make(map[string]bool, len(employees)),
	}

	var roots []*OrgChartNode
	for _, id := range rootIDs {
		if n := b.materialize(id); n != nil {
			roots = append(roots, n)
		}
	}

	// Anything still unvisited sits on a cycle (every member has a manager
	// inside the loaded set, so none qualified as a root). Promote the
	// first unvisited member so the chain renders exactly once.
	for _, id := range order {
		if !b.visited[id] {
			b.cycle = true
			if n := b.materialize(id); n != nil {
				roots = append(roots, n)
			}
		}
	}

	sortLevel(roots)

	var forest []*OrgChartNode
	var unassigned []UnassignedEmployee
	for _, n := range roots {
		if len(n.DirectReports) == 0 {
			e := index[n.ID]
			unassigned = append(unassigned, UnassignedEmployee{
				ID:               n.ID,
				FullName:         e.FullName(),
				Email:            e.Email,
				Role:             e.Role,
				Department:       n.Department,
				EmploymentStatus: e.EmploymentStatus,
			})
			continue
		}
		forest = append(forest, n)
	}

	return BuildResult{
		Forest:        forest,
		Unassigned:    unassigned,
		Stats:         buildStats(employees, children, len(roots)),
		CycleDetected: b.cycle,
	}
}

type builder struct {
	index    map[string]employee.Employee
	children map[string][]string
	visited  map[string]bool
	cycle    bool
}

func (b *builder) materialize(id string) *OrgChartNode {
	if b.visited[id] {
		// Revisit means the acyclic invariant is broken; the node already
		// rendered elsewhere contributes nothing here.
		b.cycle = true
		return nil
	}
	b.visited[id] = true

	e := b.index[id]
	node := &OrgChartNode{
		ID:               id,
		FullName:         e.FullName(),
		Email:            e.Email,
		Role:             e.Role,
		EmploymentStatus: e.EmploymentStatus,
		DirectReports:    []*OrgChartNode{},
		lastName:         e.LastName,
	}
	if e.Department != nil {
		node.Department = e.Department.Name
	}

	for _, childID := range b.children[id] {
		child := b.materialize(childID)
		if child == nil {
			continue
		}
		node.DirectReports = append(node.DirectReports, child)
		node.TotalSubordinates += child.TotalSubordinates + 1
	}
	sortLevel(node.DirectReports)

	return node
}

func sortLevel(nodes []*OrgChartNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.TotalSubordinates != b.TotalSubordinates {
			return a.TotalSubordinates > b.TotalSubordinates
		}
		ap, bp := priorityFor(a.Role), priorityFor(b.Role)
		if ap != bp {
			return ap < bp
		}
		al, bl := strings.ToLower(a.lastName), strings.ToLower(b.lastName)
		if al != bl {
			return al < bl
		}
		return a.ID < b.ID
	})
}

func priorityFor(role string) int {
	if p, ok := rolePriority[role]; ok {
		return p
	}
	return unknownRolePriority
}

func buildStats(employees []employee.Employee, children map[string][]string, rootCount int) OrgStats {
	stats := OrgStats{
		TotalEmployees: len(employees),
		RootCount:      rootCount,
		ByDepartment:   make(map[string]int),
		ByRole:         make(map[string]int),
	}
	for _, e := range employees {
		dept := "UNASSIGNED"
		if e.Department != nil && e.Department.Name != "" {
			dept = e.Department.Name
		}
		stats.ByDepartment[dept]++
		stats.ByRole[e.Role]++
	}
	for _, reports := range children {
		if len(reports) > 0 {
			stats.ManagerCount++
		}
	}
	return stats
}
