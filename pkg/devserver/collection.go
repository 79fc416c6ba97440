package devserver

import (
	"strings"
	"time"

	"tableflip.dev/backstage/pkg/entity"
)

// unique lists fields that must not repeat within a resource.
var unique = map[string]string{
	"royalty-months": "month",
}

type collection struct {
	res  entity.Resource
	docs []entity.Entity
}

func newCollection(res entity.Resource) *collection {
	return &collection{res: res}
}

func (c *collection) index(id string) int {
	for i, d := range c.docs {
		if d.ID() == id {
			return i
		}
	}
	return -1
}

func (c *collection) insert(d entity.Entity) entity.Entity {
	if d.ID() == "" {
		d["_id"] = newObjectID()
	}
	if _, ok := d["createdAt"]; !ok {
		d["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	}
	c.docs = append(c.docs, d)
	return d
}

func (c *collection) duplicate(d entity.Entity, skipID string) bool {
	field, ok := unique[c.res.Name]
	if !ok {
		return false
	}
	want := strings.ToLower(d.String(field))
	if want == "" {
		return false
	}
	for _, doc := range c.docs {
		if doc.ID() != skipID && strings.ToLower(doc.String(field)) == want {
			return true
		}
	}
	return false
}

// query filters docs by search text and exact filter values, then returns
// the requested page.
func (c *collection) query(search string, filters map[string]string, page, limit int) ([]entity.Entity, entity.Pagination) {
	var matched []entity.Entity
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, d := range c.docs {
		if needle != "" && !contains(d, needle) {
			continue
		}
		ok := true
		for k, v := range filters {
			if d.String(k) != v {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, d)
		}
	}

	total := len(matched)
	pages := (total + limit - 1) / limit
	if pages == 0 {
		pages = 1
	}
	start := (page - 1) * limit
	rows := []entity.Entity{}
	if start < total {
		end := start + limit
		if end > total {
			end = total
		}
		rows = entity.CloneAll(matched[start:end])
	}
	return rows, entity.Pagination{CurrentPage: page, TotalPages: pages, TotalCount: total}
}

func contains(d entity.Entity, needle string) bool {
	for k, v := range d {
		if k == "_id" {
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.Contains(strings.ToLower(t), needle) {
				return true
			}
		case map[string]any:
			if contains(entity.Entity(t), needle) {
				return true
			}
		}
	}
	return false
}
