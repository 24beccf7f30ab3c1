package files

import (
	"context"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ade-bello/filedepot/internal/apperr"
)

type fakeRepo struct {
	records map[int64]*File
	nextID  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[int64]*File)}
}

func (r *fakeRepo) Create(ctx context.Context, file *File) error {
	r.nextID++
	file.ID = r.nextID
	clone := *file
	r.records[file.ID] = &clone
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id int64) (*File, error) {
	file, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	clone := *file
	return &clone, nil
}

func (r *fakeRepo) List(ctx context.Context, userID, parentID int64, offset, limit int) ([]*File, error) {
	var matched []*File
	for id := r.nextID; id >= 1; id-- {
		file, ok := r.records[id]
		if ok && file.UserID == userID && file.ParentID == parentID {
			clone := *file
			matched = append(matched, &clone)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *fakeRepo) SetPublic(ctx context.Context, id int64, public bool) error {
	if file, ok := r.records[id]; ok {
		file.IsPublic = public
	}
	return nil
}

func (r *fakeRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.records)), nil
}

type fakeStorage struct {
	blobs map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string][]byte)}
}

func (s *fakeStorage) Save(ctx context.Context, name string, data []byte) (string, error) {
	path := "mem/" + name
	s.blobs[path] = data
	return path, nil
}

func (s *fakeStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	data, ok := s.blobs[path]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func newTestService() (*Service, *fakeRepo, *fakeStorage) {
	repo := newFakeRepo()
	storage := newFakeStorage()
	return NewService(repo, storage), repo, storage
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name    string
		in      CreateInput
		wantMsg string
	}{
		{
			name:    "missing name",
			in:      CreateInput{UserID: 1, Type: TypeFile, Data: encode("x")},
			wantMsg: "Missing name",
		},
		{
			name:    "missing type",
			in:      CreateInput{UserID: 1, Name: "a.txt", Data: encode("x")},
			wantMsg: "Missing type or invalid type",
		},
		{
			name:    "invalid type",
			in:      CreateInput{UserID: 1, Name: "a.txt", Type: "archive", Data: encode("x")},
			wantMsg: "Missing type or invalid type",
		},
		{
			name:    "file without data",
			in:      CreateInput{UserID: 1, Name: "a.txt", Type: TypeFile},
			wantMsg: "Missing data",
		},
		{
			name:    "image without data",
			in:      CreateInput{UserID: 1, Name: "a.png", Type: TypeImage},
			wantMsg: "Missing data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
			assert.Equal(t, tt.wantMsg, apperr.MessageOf(err))
		})
	}
}

func TestCreateFolderNeedsNoData(t *testing.T) {
	svc, _, storage := newTestService()

	folder, err := svc.Create(context.Background(), CreateInput{
		UserID: 1,
		Name:   "docs",
		Type:   TypeFolder,
	})
	require.NoError(t, err)

	assert.NotZero(t, folder.ID)
	assert.Equal(t, RootParent, folder.ParentID)
	assert.False(t, folder.IsPublic)
	assert.Empty(t, folder.LocalPath)
	assert.Empty(t, storage.blobs)
}

func TestCreateStoresContent(t *testing.T) {
	svc, _, storage := newTestService()

	file, err := svc.Create(context.Background(), CreateInput{
		UserID: 1,
		Name:   "a.txt",
		Type:   TypeFile,
		Data:   encode("hello"),
	})
	require.NoError(t, err)

	require.NotEmpty(t, file.LocalPath)
	assert.Equal(t, []byte("hello"), storage.blobs[file.LocalPath])
}

func TestCreateParentValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	folder, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "docs", Type: TypeFolder})
	require.NoError(t, err)
	plain, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "a.txt", Type: TypeFile, Data: encode("x")})
	require.NoError(t, err)

	t.Run("parent not found", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{
			UserID: 1, Name: "b.txt", Type: TypeFile, Data: encode("x"), ParentID: 999,
		})
		assert.Equal(t, "Parent not found", apperr.MessageOf(err))
	})

	t.Run("parent not a folder", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{
			UserID: 1, Name: "b.txt", Type: TypeFile, Data: encode("x"), ParentID: plain.ID,
		})
		assert.Equal(t, "Parent is not a folder", apperr.MessageOf(err))
	})

	t.Run("folder parent accepted", func(t *testing.T) {
		file, err := svc.Create(ctx, CreateInput{
			UserID: 1, Name: "b.txt", Type: TypeFile, Data: encode("x"), ParentID: folder.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, folder.ID, file.ParentID)
	})
}

func TestGetVisibility(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	file, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "a.txt", Type: TypeFile, Data: encode("x")})
	require.NoError(t, err)

	t.Run("owner sees the record", func(t *testing.T) {
		got, err := svc.Get(ctx, 1, file.ID)
		require.NoError(t, err)
		assert.Equal(t, file.ID, got.ID)
	})

	t.Run("non-owner gets not found, not unauthorized", func(t *testing.T) {
		_, err := svc.Get(ctx, 2, file.ID)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("absent record", func(t *testing.T) {
		_, err := svc.Get(ctx, 1, 999)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestSetPublicRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	file, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "a.txt", Type: TypeFile, Data: encode("x")})
	require.NoError(t, err)

	published, err := svc.SetPublic(ctx, 1, file.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublic)

	unpublished, err := svc.SetPublic(ctx, 1, file.ID, false)
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublic)

	// Everything except the flag is untouched.
	published.IsPublic = false
	assert.Equal(t, published, unpublished)
}

func TestSetPublicOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	file, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "a.txt", Type: TypeFile, Data: encode("x")})
	require.NoError(t, err)

	_, err = svc.SetPublic(ctx, 2, file.ID, true)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	got, err := svc.Get(ctx, 1, file.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublic)
}

func TestContentAccess(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	private, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "a.txt", Type: TypeFile, Data: encode("secret")})
	require.NoError(t, err)

	t.Run("owner reads private content", func(t *testing.T) {
		content, contentType, err := svc.Content(ctx, 1, private.ID, 0)
		require.NoError(t, err)
		defer content.Close()

		data, err := io.ReadAll(content)
		require.NoError(t, err)
		assert.Equal(t, "secret", string(data))
		assert.Contains(t, contentType, "text/plain")
	})

	t.Run("anonymous gets not found", func(t *testing.T) {
		_, _, err := svc.Content(ctx, AnonymousID, private.ID, 0)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("other user gets not found", func(t *testing.T) {
		_, _, err := svc.Content(ctx, 2, private.ID, 0)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("publish opens it to everyone", func(t *testing.T) {
		_, err := svc.SetPublic(ctx, 1, private.ID, true)
		require.NoError(t, err)

		content, _, err := svc.Content(ctx, AnonymousID, private.ID, 0)
		require.NoError(t, err)
		content.Close()
	})

	t.Run("unpublish closes it again", func(t *testing.T) {
		_, err := svc.SetPublic(ctx, 1, private.ID, false)
		require.NoError(t, err)

		_, _, err = svc.Content(ctx, AnonymousID, private.ID, 0)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestContentFolder(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	folder, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "docs", Type: TypeFolder, IsPublic: true})
	require.NoError(t, err)

	for _, requester := range []int64{1, 2, AnonymousID} {
		_, _, err := svc.Content(ctx, requester, folder.ID, 0)
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
		assert.Equal(t, "A folder doesn't have content", apperr.MessageOf(err))
	}
}

func TestContentSizeVariant(t *testing.T) {
	svc, _, storage := newTestService()
	ctx := context.Background()

	file, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "pic.png", Type: TypeImage, Data: encode("full")})
	require.NoError(t, err)

	t.Run("missing variant is not found", func(t *testing.T) {
		_, _, err := svc.Content(ctx, 1, file.ID, 100)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("existing variant is served", func(t *testing.T) {
		storage.blobs[file.LocalPath+"_100"] = []byte("small")

		content, _, err := svc.Content(ctx, 1, file.ID, 100)
		require.NoError(t, err)
		defer content.Close()

		data, err := io.ReadAll(content)
		require.NoError(t, err)
		assert.Equal(t, "small", string(data))
	})
}

func TestContentMissingBlob(t *testing.T) {
	svc, _, storage := newTestService()
	ctx := context.Background()

	file, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "a.txt", Type: TypeFile, Data: encode("x")})
	require.NoError(t, err)

	// Blob lost behind the metadata record.
	delete(storage.blobs, file.LocalPath)

	_, _, err = svc.Content(ctx, 1, file.ID, 0)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListPagination(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 45; i++ {
		_, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "f", Type: TypeFolder})
		require.NoError(t, err)
	}

	page0, err := svc.List(ctx, 1, RootParent, 0)
	require.NoError(t, err)
	assert.Len(t, page0, PageSize)

	page2, err := svc.List(ctx, 1, RootParent, 2)
	require.NoError(t, err)
	assert.Len(t, page2, 5)

	page3, err := svc.List(ctx, 1, RootParent, 3)
	require.NoError(t, err)
	assert.Empty(t, page3)
	assert.NotNil(t, page3)
}

func TestListOrdering(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "old", Type: TypeFolder})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateInput{UserID: 1, Name: "new", Type: TypeFolder})
	require.NoError(t, err)

	list, err := svc.List(ctx, 1, RootParent, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestContentType(t *testing.T) {
	assert.Contains(t, ContentType("report.pdf"), "application/pdf")
	assert.Contains(t, ContentType("pic.png"), "image/png")
	assert.Equal(t, "application/octet-stream", ContentType("no-extension"))
	assert.Equal(t, "application/octet-stream", ContentType("weird.zzzz"))
}
