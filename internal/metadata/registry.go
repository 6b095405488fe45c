package metadata

import "sync"

// Registry is the in-memory index of all form documents, keyed by id and
// by slug. Reloaded from the store at startup and after builder mutations.
type Registry struct {
	mu          sync.RWMutex
	formsByID   map[string]*Form
	formsBySlug map[string]*Form
}

func NewRegistry() *Registry {
	return &Registry{
		formsByID:   make(map[string]*Form),
		formsBySlug: make(map[string]*Form),
	}
}

// GetForm returns the form with the given id, or nil.
func (r *Registry) GetForm(id string) *Form {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.formsByID[id]
}

// GetFormBySlug returns the form with the given slug, or nil.
func (r *Registry) GetFormBySlug(slug string) *Form {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.formsBySlug[slug]
}

// AllForms returns all registered forms.
func (r *Registry) AllForms() []*Form {
	r.mu.RLock()
	defer r.mu.RUnlock()
	forms := make([]*Form, 0, len(r.formsByID))
	for _, f := range r.formsByID {
		forms = append(forms, f)
	}
	return forms
}

// Load replaces all forms in the registry.
// Called during startup and after builder mutations.
func (r *Registry) Load(forms []*Form) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.formsByID = make(map[string]*Form, len(forms))
	r.formsBySlug = make(map[string]*Form, len(forms))
	for _, f := range forms {
		r.formsByID[f.ID] = f
		if f.Slug != "" {
			r.formsBySlug[f.Slug] = f
		}
	}
}

// Upsert adds or replaces a single form without reloading everything.
func (r *Registry) Upsert(f *Form) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old := r.formsByID[f.ID]; old != nil && old.Slug != f.Slug {
		delete(r.formsBySlug, old.Slug)
	}
	r.formsByID[f.ID] = f
	if f.Slug != "" {
		r.formsBySlug[f.Slug] = f
	}
}

// Remove drops a form from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f := r.formsByID[id]; f != nil {
		delete(r.formsBySlug, f.Slug)
	}
	delete(r.formsByID, id)
}
