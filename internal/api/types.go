package api

import "github.com/colonyops/lightbox/internal/core/image"

// Session identifies the signed in user on every request.
type Session struct {
	UserName string
	Email    string
	Token    string
}

// Account is the body of every auth endpoint.
type Account struct {
	UserName           string   `json:"userName"`
	UserEmail          string   `json:"userEmail"`
	UserToken          string   `json:"userToken"`
	UserOwnedImages    []string `json:"userOwnedImages"`
	UserOpenedToImages []string `json:"userOpenedToImages"`
}

// Session returns the session described by the account.
func (a Account) Session() Session {
	return Session{UserName: a.UserName, Email: a.UserEmail, Token: a.UserToken}
}

// Credentials is the login request body.
type Credentials struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	Password  string `json:"password"`
}

type ListResponse struct {
	Images               []image.Record `json:"images"`
	FilteredImagesNumber *uint          `json:"filteredImagesNumber"`
	AllFilteredImagesID  []string       `json:"allFilteredImagesId,omitempty"`
}

type ImageResponse struct {
	Image *image.Record `json:"image"`
}

type PublicListResponse struct {
	PublicImagesList []string `json:"publicImagesList"`
}

type UploadResponse struct {
	NewImages []image.Record `json:"newImages"`
}

type UpdateRequest struct {
	ImagesToUpdate []image.PartialUpdate `json:"imagesToUpdate"`
}

type UpdateResponse struct {
	UpdatedImages []image.Record `json:"updatedImages"`
}

type DeleteRequest struct {
	ImagesToDelete []image.SelectionEntry `json:"imagesToDelete"`
}

type DeleteResponse struct {
	NewImagesList *[]string `json:"newImagesList"`
}

type ShareRequest struct {
	ImagesIDList []string            `json:"imagesIdList"`
	UsersList    []image.ShareAction `json:"usersList"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// ErrorResponse is the body sent with non-2xx responses.
type ErrorResponse struct {
	Message string `json:"message"`
}
