// Package catalog is the in-memory system of record for employees, teams and
// projects, including team membership.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/pkg/metrics"
)

// Catalog stores entities behind a single RWMutex. Reads return copies.
type Catalog struct {
	mu        sync.RWMutex
	employees map[string]model.Employee
	teams     map[string]model.Team
	projects  map[string]model.Project
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		employees: make(map[string]model.Employee),
		teams:     make(map[string]model.Team),
		projects:  make(map[string]model.Project),
	}
}

func missing(kind, id string) error {
	return fmt.Errorf("%w: %s %s", model.ErrMissingEntity, kind, id)
}

func cloneTeam(t model.Team) model.Team {
	t.MemberIDs = slices.Clone(t.MemberIDs)
	return t
}

func cloneEmployee(e model.Employee) model.Employee {
	e.Certifications = slices.Clone(e.Certifications)
	e.PastProjects = slices.Clone(e.PastProjects)
	return e
}

func (c *Catalog) publishSizes() {
	metrics.UpdateEntities("employee", len(c.employees))
	metrics.UpdateEntities("team", len(c.teams))
	metrics.UpdateEntities("project", len(c.projects))
}

// PutEmployee creates or replaces an employee. Team membership is owned by
// the team operations, so the stored TeamID is preserved on replace.
// It returns the previous version, if any.
func (c *Catalog) PutEmployee(ctx context.Context, e model.Employee) (prev model.Employee, existed bool, err error) {
	if e.Role == "" {
		e.Role = model.RoleEmployee
	}
	if err := e.Validate(); err != nil {
		return model.Employee{}, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, existed = c.employees[e.ID]
	e.TeamID = prev.TeamID
	c.employees[e.ID] = cloneEmployee(e)
	c.publishSizes()
	return prev, existed, nil
}

// Employee returns one employee.
func (c *Catalog) Employee(ctx context.Context, id string) (model.Employee, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.employees[id]
	if !ok {
		return model.Employee{}, missing("employee", id)
	}
	return cloneEmployee(e), nil
}

// Employees returns every employee ordered by id.
func (c *Catalog) Employees(ctx context.Context) []model.Employee {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Employee, 0, len(c.employees))
	for _, e := range c.employees {
		out = append(out, cloneEmployee(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateEmployee applies fn to a stored employee under the write lock.
func (c *Catalog) UpdateEmployee(ctx context.Context, id string, fn func(*model.Employee) error) (model.Employee, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.employees[id]
	if !ok {
		return model.Employee{}, missing("employee", id)
	}
	e = cloneEmployee(e)
	teamID := e.TeamID
	if err := fn(&e); err != nil {
		return model.Employee{}, err
	}
	e.ID, e.TeamID = id, teamID
	if err := e.Validate(); err != nil {
		return model.Employee{}, err
	}
	c.employees[id] = e
	return cloneEmployee(e), nil
}

// DeleteEmployee removes an employee and its team membership. It returns the
// team the employee belonged to, or "".
func (c *Catalog) DeleteEmployee(ctx context.Context, id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.employees[id]
	if !ok {
		return "", missing("employee", id)
	}
	if e.TeamID != "" {
		c.detachLocked(e.TeamID, id)
	}
	delete(c.employees, id)
	c.publishSizes()
	return e.TeamID, nil
}

// PutTeam creates a team or renames an existing one. Membership is not
// touched; use AddMember and SetLead.
func (c *Catalog) PutTeam(ctx context.Context, id, name string) (model.Team, error) {
	t := model.Team{ID: id, Name: name}
	if err := t.Validate(); err != nil {
		return model.Team{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.teams[id]; ok {
		cur.Name = name
		c.teams[id] = cur
		return cloneTeam(cur), nil
	}
	t.MemberIDs = []string{}
	c.teams[id] = t
	c.publishSizes()
	return cloneTeam(t), nil
}

// Team returns one team.
func (c *Catalog) Team(ctx context.Context, id string) (model.Team, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.teams[id]
	if !ok {
		return model.Team{}, missing("team", id)
	}
	return cloneTeam(t), nil
}

// Teams returns every team ordered by id.
func (c *Catalog) Teams(ctx context.Context) []model.Team {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Team, 0, len(c.teams))
	for _, t := range c.teams {
		out = append(out, cloneTeam(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TeamIDs returns team ids in ascending order.
func (c *Catalog) TeamIDs(ctx context.Context) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.teams)
}

// HasTeam reports whether the team exists.
func (c *Catalog) HasTeam(ctx context.Context, id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.teams[id]
	return ok
}

// TeamMembers returns the team and its members in membership order.
func (c *Catalog) TeamMembers(ctx context.Context, teamID string) (model.Team, []model.Employee, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.teams[teamID]
	if !ok {
		return model.Team{}, nil, missing("team", teamID)
	}
	members := make([]model.Employee, 0, len(t.MemberIDs))
	for _, id := range t.MemberIDs {
		if e, ok := c.employees[id]; ok {
			members = append(members, cloneEmployee(e))
		}
	}
	return cloneTeam(t), members, nil
}

// DeleteTeam removes a team and clears its members' team reference.
func (c *Catalog) DeleteTeam(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.teams[id]
	if !ok {
		return missing("team", id)
	}
	for _, m := range t.MemberIDs {
		if e, ok := c.employees[m]; ok {
			e.TeamID = ""
			c.employees[m] = e
		}
	}
	delete(c.teams, id)
	c.publishSizes()
	return nil
}

// AddMember puts an employee on a team. An employee belongs to at most one
// team, so joining moves them. It returns every team whose membership
// changed (the previous team first, if any).
func (c *Catalog) AddMember(ctx context.Context, teamID, employeeID string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.teams[teamID]
	if !ok {
		return nil, missing("team", teamID)
	}
	e, ok := c.employees[employeeID]
	if !ok {
		return nil, missing("employee", employeeID)
	}
	if e.TeamID == teamID && t.HasMember(employeeID) {
		return nil, nil
	}

	var changed []string
	if e.TeamID != "" && e.TeamID != teamID {
		c.detachLocked(e.TeamID, employeeID)
		changed = append(changed, e.TeamID)
	}
	t = c.teams[teamID]
	t.MemberIDs = append(slices.Clone(t.MemberIDs), employeeID)
	c.teams[teamID] = t
	e.TeamID = teamID
	c.employees[employeeID] = e
	return append(changed, teamID), nil
}

// RemoveMember takes an employee off a team. Removing the lead clears the lead.
func (c *Catalog) RemoveMember(ctx context.Context, teamID, employeeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.teams[teamID]
	if !ok {
		return missing("team", teamID)
	}
	if !t.HasMember(employeeID) {
		return fmt.Errorf("%w: employee %s is not a member of team %s", model.ErrMissingEntity, employeeID, teamID)
	}
	c.detachLocked(teamID, employeeID)
	return nil
}

// SetLead designates a member as lead. An empty employeeID clears the lead.
func (c *Catalog) SetLead(ctx context.Context, teamID, employeeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.teams[teamID]
	if !ok {
		return missing("team", teamID)
	}
	if employeeID != "" && !t.HasMember(employeeID) {
		return fmt.Errorf("%w: lead %s is not a member of team %s", model.ErrInvalidInput, employeeID, teamID)
	}
	t.LeadID = employeeID
	c.teams[teamID] = t
	return nil
}

// detachLocked removes employeeID from teamID. Caller holds the write lock.
func (c *Catalog) detachLocked(teamID, employeeID string) {
	t, ok := c.teams[teamID]
	if !ok {
		return
	}
	t.MemberIDs = slices.DeleteFunc(slices.Clone(t.MemberIDs), func(id string) bool { return id == employeeID })
	if t.LeadID == employeeID {
		t.LeadID = ""
	}
	c.teams[teamID] = t
	if e, ok := c.employees[employeeID]; ok && e.TeamID == teamID {
		e.TeamID = ""
		c.employees[employeeID] = e
	}
}

// PutProject creates or replaces a project and returns the previous version.
func (c *Catalog) PutProject(ctx context.Context, p model.Project) (prev model.Project, existed bool, err error) {
	if err := p.Validate(); err != nil {
		return model.Project{}, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, existed = c.projects[p.ID]
	c.projects[p.ID] = p
	c.publishSizes()
	return prev, existed, nil
}

// Project returns one project.
func (c *Catalog) Project(ctx context.Context, id string) (model.Project, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.projects[id]
	if !ok {
		return model.Project{}, missing("project", id)
	}
	return p, nil
}

// Projects returns every project ordered by id.
func (c *Catalog) Projects(ctx context.Context) []model.Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Project, 0, len(c.projects))
	for _, p := range c.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ProjectIDs returns project ids in ascending order.
func (c *Catalog) ProjectIDs(ctx context.Context) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.projects)
}

// HasProject reports whether the project exists.
func (c *Catalog) HasProject(ctx context.Context, id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.projects[id]
	return ok
}

// HasEmployee reports whether the employee exists.
func (c *Catalog) HasEmployee(ctx context.Context, id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.employees[id]
	return ok
}

// DeleteProject removes a project.
func (c *Catalog) DeleteProject(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.projects[id]; !ok {
		return missing("project", id)
	}
	delete(c.projects, id)
	c.publishSizes()
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
