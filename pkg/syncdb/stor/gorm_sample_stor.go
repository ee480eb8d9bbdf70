package stor

import (
	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"gorm.io/gorm"
)

type GormSampleStor struct {
	db *gorm.DB
}

func NewGormSampleStor(db *gorm.DB) *GormSampleStor {
	return &GormSampleStor{db: db}
}

func (s *GormSampleStor) GetSampleIDsForDataset(fdID string) ([]string, error) {
	var sampleIDs []string
	err := s.db.Model(&model.Sample{}).
		Joins("JOIN final_deliverables ON samples.final_deliverable_id = final_deliverables.id").
		Where("final_deliverables.fd_id = ?", fdID).
		Order("samples.id").
		Pluck("samples.sample_id", &sampleIDs).Error
	return sampleIDs, err
}
