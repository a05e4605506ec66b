package handler

import (
	"fmt"
	"time"

	"github.com/karitsu/gridpager/internal/domain"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// PictureDTO is the JSON representation of a gallery picture.
type PictureDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	ByteSize    int64  `json:"byteSize"`
	ContentType string `json:"contentType"`
	SortOrder   int    `json:"sortOrder"`
	FileURL     string `json:"fileUrl"`
	ThumbURL    string `json:"thumbUrl"`
	CreatedAt   string `json:"createdAt"`
}

func toPictureDTO(p domain.Picture) PictureDTO {
	return PictureDTO{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		ByteSize:    p.ByteSize,
		ContentType: p.ContentType,
		SortOrder:   p.SortOrder,
		FileURL:     "/pictures/" + p.ID + "/file",
		ThumbURL:    "/pictures/" + p.ID + "/thumb",
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func toPictureDTOs(pics []domain.Picture) []PictureDTO {
	dtos := make([]PictureDTO, len(pics))
	for i, p := range pics {
		dtos[i] = toPictureDTO(p)
	}
	return dtos
}

// PageDTO is the JSON representation of one generated page.
type PageDTO struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	URL      string `json:"url"`
}

func toPageDTO(p domain.EncodedPage) PageDTO {
	return PageDTO{
		Index:    p.Index,
		Filename: p.Filename,
		MIMEType: p.MIMEType,
		Width:    p.Width,
		Height:   p.Height,
		URL:      fmt.Sprintf("/export/pages/%d", p.Index),
	}
}

func toPageDTOs(pages []domain.EncodedPage) []PageDTO {
	dtos := make([]PageDTO, len(pages))
	for i, p := range pages {
		dtos[i] = toPageDTO(p)
	}
	return dtos
}

// ImportReportDTO summarizes an upload batch for the client.
type ImportReportDTO struct {
	Added      []PictureDTO `json:"added"`
	Duplicates int          `json:"duplicates"`
	Rejected   int          `json:"rejected"`
}
