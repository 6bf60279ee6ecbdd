package sync_test

import (
	"context"
	"fmt"

	"github.com/motorlot/lotsync/internal/utils/slug"
	"github.com/motorlot/lotsync/pkg/errors"
	"github.com/motorlot/lotsync/pkg/inventory"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

// fakeAPI is an in-memory stand-in for the content backend.
type fakeAPI struct {
	posts     map[int]*wordpress.Post
	postsByOC map[string]int
	terms     map[string]map[string]*wordpress.Term // taxonomy -> slug -> term
	relations []wordpress.Relation

	nextPostID int
	nextTermID int

	updateCalls []updateCall
	trashCalls  []int
	findCalls   int
	createCalls int

	failFind   error
	failCreate error
	failUpdate error
	failTerms  error
}

type updateCall struct {
	id     int
	fields map[string]any
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		posts:      map[int]*wordpress.Post{},
		postsByOC:  map[string]int{},
		terms:      map[string]map[string]*wordpress.Term{},
		nextPostID: 500,
		nextTermID: 10,
	}
}

// seedTerm plants an existing taxonomy term.
func (f *fakeAPI) seedTerm(taxonomy, name string, parent int) *wordpress.Term {
	f.nextTermID++
	term := &wordpress.Term{ID: f.nextTermID, Name: name, Slug: slug.Make(name), Parent: parent}
	if f.terms[taxonomy] == nil {
		f.terms[taxonomy] = map[string]*wordpress.Term{}
	}
	f.terms[taxonomy][term.Slug] = term
	return term
}

// seedPost plants an existing post keyed by its ordencompra meta.
func (f *fakeAPI) seedPost(ordenCompra string, post *wordpress.Post) *wordpress.Post {
	f.nextPostID++
	post.ID = f.nextPostID
	f.posts[post.ID] = post
	f.postsByOC[ordenCompra] = post.ID
	return post
}

func (f *fakeAPI) FindPostByOrdenCompra(_ context.Context, oc string) (int, error) {
	f.findCalls++
	if f.failFind != nil {
		return 0, f.failFind
	}
	return f.postsByOC[oc], nil
}

func (f *fakeAPI) GetPost(_ context.Context, id int) (*wordpress.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, errors.NewNotFoundError("post", fmt.Sprint(id))
	}
	return post, nil
}

func (f *fakeAPI) CreatePost(_ context.Context, post *wordpress.Post) (int, error) {
	f.createCalls++
	if f.failCreate != nil {
		return 0, f.failCreate
	}
	f.nextPostID++
	stored := *post
	stored.ID = f.nextPostID
	f.posts[stored.ID] = &stored
	if oc, ok := post.Meta["ordencompra"].(string); ok {
		f.postsByOC[oc] = stored.ID
	}
	return stored.ID, nil
}

func (f *fakeAPI) UpdatePost(_ context.Context, id int, fields map[string]any) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	f.updateCalls = append(f.updateCalls, updateCall{id: id, fields: fields})
	return nil
}

func (f *fakeAPI) TrashPost(_ context.Context, id int) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	f.trashCalls = append(f.trashCalls, id)
	if post, ok := f.posts[id]; ok {
		post.Status = wordpress.StatusTrash
	}
	return nil
}

func (f *fakeAPI) FindTermBySlug(_ context.Context, taxonomy, termSlug string) (*wordpress.Term, error) {
	if f.failTerms != nil {
		return nil, f.failTerms
	}
	term, ok := f.terms[taxonomy][termSlug]
	if !ok {
		return nil, nil
	}
	return term, nil
}

func (f *fakeAPI) CreateTerm(_ context.Context, taxonomy string, term wordpress.Term) (*wordpress.Term, error) {
	if f.failTerms != nil {
		return nil, f.failTerms
	}
	f.nextTermID++
	created := term
	created.ID = f.nextTermID
	if f.terms[taxonomy] == nil {
		f.terms[taxonomy] = map[string]*wordpress.Term{}
	}
	f.terms[taxonomy][created.Slug] = &created
	return &created, nil
}

func (f *fakeAPI) SetRelation(_ context.Context, rel wordpress.Relation) error {
	// Replace semantics: an identical edge overwrites rather than appends.
	for i, existing := range f.relations {
		if existing.RelationID == rel.RelationID && existing.ParentID == rel.ParentID && existing.ChildID == rel.ChildID {
			f.relations[i] = rel
			return nil
		}
	}
	f.relations = append(f.relations, rel)
	return nil
}

func (f *fakeAPI) hasRelation(relationID, parent, child int) bool {
	for _, rel := range f.relations {
		if rel.RelationID == relationID && rel.ParentID == parent && rel.ChildID == child {
			return true
		}
	}
	return false
}

// fakeMedia returns fixed attachment IDs without any network work.
type fakeMedia struct {
	featuredID  int
	exteriorIDs []int
	interiorIDs []int
	err         error
}

func (m *fakeMedia) EnsureFeatured(_ context.Context, rec *inventory.Record) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if rec.FeaturedImageID == 0 {
		rec.FeaturedImageID = m.featuredID
	}
	return rec.FeaturedImageID, nil
}

func (m *fakeMedia) EnsureGallery(_ context.Context, rec *inventory.Record, g inventory.Gallery) ([]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := m.exteriorIDs
	if g == inventory.GalleryInterior {
		ids = m.interiorIDs
	}
	if len(rec.GalleryIDs(g)) == 0 && len(ids) > 0 {
		rec.SetGalleryIDs(g, ids)
	}
	return rec.GalleryIDs(g), nil
}
