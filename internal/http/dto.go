package httpapi

import (
	"time"

	"biodb-backend-go/internal/models"
)

type UserDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RegNumber string    `json:"regNumber"`
	Role      string    `json:"role"`
	CanAdd    bool      `json:"canAddSamples"`
	CreatedAt time.Time `json:"createdAt"`
}

type SampleDTO struct {
	RecordID       int64   `json:"recordId"`
	SampleName     string  `json:"sampleName"`
	Species        string  `json:"species"`
	CollectionDate *string `json:"collectionDate"`
	CollectedBy    *string `json:"collectedBy"`
	Description    *string `json:"description"`
}

type AccessLogDTO struct {
	ID         int64     `json:"id"`
	AccessTime time.Time `json:"accessTime"`
	Activity   string    `json:"activity"`
}

func toUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		RegNumber: user.RegNumber,
		Role:      user.Role,
		CanAdd:    user.CanAddSamples(),
		CreatedAt: user.CreatedAt,
	}
}

func toSampleDTO(sample models.BiologicalSample) SampleDTO {
	return SampleDTO{
		RecordID:       sample.RecordID,
		SampleName:     sample.SampleName,
		Species:        sample.Species,
		CollectionDate: sample.CollectionDate,
		CollectedBy:    sample.CollectedBy,
		Description:    sample.Description,
	}
}
