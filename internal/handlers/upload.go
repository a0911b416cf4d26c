package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/cinesafe/cinesafe-backend/internal/services"
)

// Uploader is the shared Cloudinary client, set during startup. A nil
// Uploader means image uploads are disabled for this deployment.
var Uploader *services.CloudinaryService

const maxUploadSize = 10 << 20 // 10 MB

type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// UploadImage accepts a multipart "file" field and returns the hosted
// URL. Configuration failures get their own message so users know the
// problem is on our side, not their photo.
func UploadImage(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	if Uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	_, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}

	folder := r.FormValue("folder")
	if folder != "avatars" && folder != "equipment" {
		folder = "equipment"
	}

	url, err := Uploader.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		if errors.Is(err, services.ErrUploadConfig) {
			writeError(w, http.StatusBadGateway, "Image service misconfigured, try again later")
			return
		}
		log.Printf("⚠️ Upload failed for user %s: %v", user.ID.Hex(), err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{Success: true, URL: url})
}
