package model

// FinalDeliverable links a dataset identifier to the samples recorded for it by
// data entry.
type FinalDeliverable struct {
	ID      int      `json:"id"`
	FdID    string   `gorm:"column:fd_id" json:"fd_id"`
	Samples []Sample `gorm:"foreignKey:FinalDeliverableID;references:ID" json:"samples"`
}

func (FinalDeliverable) TableName() string {
	return "final_deliverables"
}

type Sample struct {
	ID                 int    `json:"id"`
	SampleID           string `gorm:"column:sample_id" json:"sample_id"`
	FinalDeliverableID int    `gorm:"column:final_deliverable_id" json:"final_deliverable_id"`
}

func (Sample) TableName() string {
	return "samples"
}
