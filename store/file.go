package store

import (
	"context"
	"sort"
	"strconv"

	"github.com/Ariyan3323/my-ai-bot/internal/fsstore"
)

// File persists the whole user map as one flat JSON document, keyed by the
// stringified user ID. Every write re-reads the document, mutates one entry
// and atomically replaces the file; a process-wide lock file serializes
// concurrent writers so partial rewrites cannot interleave.
type File struct {
	path     string
	lockPath string
}

func NewFile(path string) *File {
	return &File{path: path, lockPath: path + ".lck"}
}

func (f *File) Get(ctx context.Context, id int64) (User, bool, error) {
	var (
		u  User
		ok bool
	)
	err := fsstore.WithLock(ctx, f.lockPath, func() error {
		doc, err := f.read()
		if err != nil {
			return err
		}
		u, ok = doc[strconv.FormatInt(id, 10)]
		return nil
	})
	if err != nil {
		return User{}, false, err
	}
	if !ok {
		return User{}, false, nil
	}
	normalizeUser(&u, id)
	return u, true, nil
}

func (f *File) Update(ctx context.Context, id int64, mutate func(*User)) (User, error) {
	var out User
	err := fsstore.WithLock(ctx, f.lockPath, func() error {
		doc, err := f.read()
		if err != nil {
			return err
		}
		key := strconv.FormatInt(id, 10)
		u, ok := doc[key]
		if !ok {
			u = NewUser(id)
		}
		if mutate != nil {
			mutate(&u)
		}
		normalizeUser(&u, id)
		doc[key] = u
		out = u
		return fsstore.WriteJSONAtomic(f.path, doc, fsstore.FileOptions{})
	})
	if err != nil {
		return User{}, err
	}
	return out, nil
}

func (f *File) List(ctx context.Context) ([]User, error) {
	var out []User
	err := fsstore.WithLock(ctx, f.lockPath, func() error {
		doc, err := f.read()
		if err != nil {
			return err
		}
		out = make([]User, 0, len(doc))
		for key, u := range doc {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				continue
			}
			normalizeUser(&u, id)
			out = append(out, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *File) read() (map[string]User, error) {
	doc := make(map[string]User)
	if _, err := fsstore.ReadJSON(f.path, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
