package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keja/keja/internal/handler/dto"
)

func studioRequest() dto.CreateListingRequest {
	return dto.CreateListingRequest{
		Title:       "Studio A",
		Category:    "Bedsitter",
		Price:       "Ksh 6500",
		Description: "Near the stage",
		Location:    "Nairobi West",
	}
}

func studioForm() map[string]string {
	return map[string]string{
		"title":       "Studio A",
		"category":    "Bedsitter",
		"price":       "Ksh 6500",
		"description": "Near the stage",
		"location":    "Nairobi West",
	}
}

func createListing(t *testing.T, app *testApp, token string, req dto.CreateListingRequest) dto.ListingResponse {
	t.Helper()
	rec := app.doJSON(t, http.MethodPost, "/api/v1/listings", token, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp dto.ListingResponse
	decodeBody(t, rec, &resp)
	return resp
}

func storedFiles(t *testing.T, app *testApp) []string {
	t.Helper()
	entries, err := os.ReadDir(app.uploads.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestListing_CreateJSON(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	lat := -1.3
	req := studioRequest()
	req.Latitude = &lat

	got := createListing(t, app, token, req)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, int64(1), got.OwnerID)
	assert.Equal(t, "Bedsitter", got.Category)
	require.NotNil(t, got.Latitude)
	assert.InDelta(t, -1.3, *got.Latitude, 1e-9)
	assert.Nil(t, got.Longitude)
	assert.Nil(t, got.ImageURL)

	assert.Contains(t, app.logs.String(), `"msg":"listing_created"`)
}

func TestListing_Create_RequiresAuth(t *testing.T) {
	app := newTestApp(t)

	rec := app.doJSON(t, http.MethodPost, "/api/v1/listings", "", studioRequest())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
}

func TestListing_Create_Validation(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	req := studioRequest()
	req.Category = "Mansion"
	req.Title = ""

	rec := app.doJSON(t, http.MethodPost, "/api/v1/listings", token, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeError(t, rec)
	assert.Contains(t, body.Fields, "category")
	assert.Contains(t, body.Fields, "title")
}

func TestListing_CreateMultipart_WithImage(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	fields := studioForm()
	fields["latitude"] = "-1.29"
	fields["longitude"] = "36.82"
	body, contentType := multipartBody(t, fields, "../My House.PNG", []byte("png-bytes"))

	rec := app.do(t, http.MethodPost, "/api/v1/listings", token, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got dto.ListingResponse
	decodeBody(t, rec, &got)
	require.NotNil(t, got.ImageURL)
	assert.True(t, strings.HasPrefix(*got.ImageURL, dto.UploadsPath))
	assert.True(t, strings.HasSuffix(*got.ImageURL, "_My_House.PNG"))
	require.NotNil(t, got.Longitude)
	assert.InDelta(t, 36.82, *got.Longitude, 1e-9)

	files := storedFiles(t, app)
	require.Len(t, files, 1)
	assert.Equal(t, strings.TrimPrefix(*got.ImageURL, dto.UploadsPath), files[0])

	content, err := os.ReadFile(filepath.Join(app.uploads.Dir(), files[0]))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
}

func TestListing_CreateMultipart_RejectedImage(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	body, contentType := multipartBody(t, studioForm(), "payload.exe", []byte("MZ"))

	rec := app.do(t, http.MethodPost, "/api/v1/listings", token, body, contentType)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "image")

	assert.Empty(t, storedFiles(t, app))
	assert.Equal(t, http.StatusNotFound, app.doJSON(t, http.MethodGet, "/api/v1/listings/1", "", nil).Code)
}

func TestListing_CreateMultipart_InvalidFieldsDiscardImage(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	fields := studioForm()
	fields["category"] = "Castle"
	body, contentType := multipartBody(t, fields, "house.jpg", []byte("jpg"))

	rec := app.do(t, http.MethodPost, "/api/v1/listings", token, body, contentType)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, storedFiles(t, app))
}

func TestListing_CreateMultipart_BadCoordinate(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	fields := studioForm()
	fields["latitude"] = "north"
	body, contentType := multipartBody(t, fields, "", nil)

	rec := app.do(t, http.MethodPost, "/api/v1/listings", token, body, contentType)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "must be a number", decodeError(t, rec).Fields["latitude"])
}

func TestListing_Get(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")
	created := createListing(t, app, token, studioRequest())

	rec := app.doJSON(t, http.MethodGet, "/api/v1/listings/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.ListingResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, created.ID, got.ID)

	for _, path := range []string{"/api/v1/listings/99", "/api/v1/listings/abc", "/api/v1/listings/-1"} {
		rec := app.doJSON(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestListing_Create_RejectsNULAndInvalidUTF8(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	req := studioRequest()
	req.Title = "Studio\x00A"
	rec := app.doJSON(t, http.MethodPost, "/api/v1/listings", token, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "title")

	form := studioForm()
	form["description"] = "bad \xff"
	body, contentType := multipartBody(t, form, "", nil)
	rec = app.do(t, http.MethodPost, "/api/v1/listings", token, body, contentType)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "description")
}

func TestListing_Search(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	createListing(t, app, token, studioRequest())
	second := studioRequest()
	second.Category = "1 Bedroom"
	second.Location = "Kilimani"
	createListing(t, app, token, second)
	third := studioRequest()
	third.Location = "100%_Westlands"
	createListing(t, app, token, third)

	testCases := []struct {
		name  string
		query string
		ids   []int64
	}{
		{"no filters", "", []int64{1, 2, 3}},
		{"by type", "?type=Bedsitter", []int64{1, 3}},
		{"by type with space", "?type=1+Bedroom", []int64{2}},
		{"by location case-insensitive", "?location=nairobi", []int64{1}},
		{"both filters", "?type=Bedsitter&location=west", []int64{1, 3}},
		{"literal wildcard", "?location=%25_", []int64{3}},
		{"space is literal", "?location=%20", []int64{1}},
		{"no match", "?location=Mombasa", []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := app.doJSON(t, http.MethodGet, "/api/v1/listings"+tc.query, "", nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp dto.ListingListResponse
			decodeBody(t, rec, &resp)
			ids := make([]int64, 0, len(resp.Data))
			for _, l := range resp.Data {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestListing_Search_UnknownType(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")
	createListing(t, app, token, studioRequest())

	rec := app.doJSON(t, http.MethodGet, "/api/v1/listings?type=Mansion", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestListing_ListByUser(t *testing.T) {
	app := newTestApp(t)
	alice := app.signUp(t, "alice")
	bob := app.signUp(t, "bob")

	createListing(t, app, alice, studioRequest())
	createListing(t, app, bob, studioRequest())
	createListing(t, app, alice, studioRequest())

	rec := app.doJSON(t, http.MethodGet, "/api/v1/users/alice/listings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.UserListingsResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "alice", resp.User.Handle)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(1), resp.Data[0].ID)
	assert.Equal(t, int64(3), resp.Data[1].ID)

	rec = app.doJSON(t, http.MethodGet, "/api/v1/users/nobody/listings", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", decodeError(t, rec).Code)

	rec = app.doJSON(t, http.MethodGet, "/api/v1/me/listings", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine dto.ListingListResponse
	decodeBody(t, rec, &mine)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, int64(2), mine.Data[0].ID)
}

func TestListing_UpdateJSON(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	lat := 1.0
	req := studioRequest()
	req.Latitude = &lat
	createListing(t, app, token, req)

	price := "Ksh 7000"
	rec := app.doJSON(t, http.MethodPatch, "/api/v1/listings/1", token, dto.UpdateListingRequest{
		Price:         &price,
		ClearLatitude: true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got dto.ListingResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, "Ksh 7000", got.Price)
	assert.Equal(t, "Studio A", got.Title)
	assert.Nil(t, got.Latitude)
}

func TestListing_Update_NotOwner(t *testing.T) {
	app := newTestApp(t)
	alice := app.signUp(t, "alice")
	bob := app.signUp(t, "bob")
	createListing(t, app, alice, studioRequest())

	title := "Hijacked"
	rec := app.doJSON(t, http.MethodPatch, "/api/v1/listings/1", bob, dto.UpdateListingRequest{Title: &title})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)

	rec = app.doJSON(t, http.MethodGet, "/api/v1/listings/1", "", nil)
	var got dto.ListingResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, "Studio A", got.Title)
}

func TestListing_Update_Missing(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	title := "x"
	rec := app.doJSON(t, http.MethodPatch, "/api/v1/listings/7", token, dto.UpdateListingRequest{Title: &title})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListing_UpdateMultipart_ReplacesImage(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	body, contentType := multipartBody(t, studioForm(), "old.png", []byte("old"))
	rec := app.do(t, http.MethodPost, "/api/v1/listings", token, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	oldFiles := storedFiles(t, app)
	require.Len(t, oldFiles, 1)

	body, contentType = multipartBody(t, map[string]string{"title": "Studio B"}, "new.gif", []byte("new"))
	rec = app.do(t, http.MethodPatch, "/api/v1/listings/1", token, body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got dto.ListingResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, "Studio B", got.Title)
	assert.Equal(t, "Bedsitter", got.Category)
	require.NotNil(t, got.ImageURL)
	assert.True(t, strings.HasSuffix(*got.ImageURL, "_new.gif"))

	files := storedFiles(t, app)
	require.Len(t, files, 1)
	assert.NotEqual(t, oldFiles[0], files[0])
}

func TestListing_UpdateMultipart_NotOwnerKeepsFiles(t *testing.T) {
	app := newTestApp(t)
	alice := app.signUp(t, "alice")
	bob := app.signUp(t, "bob")

	body, contentType := multipartBody(t, studioForm(), "alice.png", []byte("a"))
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/v1/listings", alice, body, contentType).Code)

	body, contentType = multipartBody(t, map[string]string{}, "bob.png", []byte("b"))
	rec := app.do(t, http.MethodPatch, "/api/v1/listings/1", bob, body, contentType)
	require.Equal(t, http.StatusForbidden, rec.Code)

	files := storedFiles(t, app)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(files[0], "_alice.png"))
}

func TestListing_UpdateMultipart_ClearsCoordinate(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "alice")

	lat, lng := 1.5, 2.5
	req := studioRequest()
	req.Latitude, req.Longitude = &lat, &lng
	createListing(t, app, token, req)

	body, contentType := multipartBody(t, map[string]string{"latitude": ""}, "", nil)
	rec := app.do(t, http.MethodPatch, "/api/v1/listings/1", token, body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got dto.ListingResponse
	decodeBody(t, rec, &got)
	assert.Nil(t, got.Latitude)
	require.NotNil(t, got.Longitude)
	assert.InDelta(t, 2.5, *got.Longitude, 1e-9)
}

func TestListing_Delete(t *testing.T) {
	app := newTestApp(t)
	alice := app.signUp(t, "alice")
	bob := app.signUp(t, "bob")

	body, contentType := multipartBody(t, studioForm(), "house.jpeg", []byte("img"))
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/v1/listings", alice, body, contentType).Code)

	rec := app.doJSON(t, http.MethodDelete, "/api/v1/listings/1", bob, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Len(t, storedFiles(t, app), 1)

	rec = app.doJSON(t, http.MethodDelete, "/api/v1/listings/1", alice, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, storedFiles(t, app))

	assert.Equal(t, http.StatusNotFound, app.doJSON(t, http.MethodGet, "/api/v1/listings/1", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.doJSON(t, http.MethodDelete, "/api/v1/listings/1", alice, nil).Code)

	assert.Equal(t, uint64(1), app.metrics.Snapshot().ListingsDeleted)
}
