package dao

import (
	"context"
	"cryptograph/internal/model/entity"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MarketDao struct {
	db *gorm.DB
}

func NewMarketDao(db *gorm.DB) *MarketDao {
	return &MarketDao{db: db}
}

// MovingAverageUpsert 同一天同周期只留一条，重复刷新覆盖value
func (d *MarketDao) MovingAverageUpsert(ctx context.Context, ma *entity.MovingAverage) error {
	ma.CalculatedAt = ma.CalculatedAt.Truncate(24 * time.Hour)
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "coin_symbol"}, {Name: "days"}, {Name: "calculated_at"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(ma).Error
}

// MovingAveragesGetLatest 某个币各周期的最新快照
func (d *MarketDao) MovingAveragesGetLatest(ctx context.Context, symbol string) ([]entity.MovingAverage, error) {
	var rows []entity.MovingAverage
	err := d.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (days) * FROM moving_averages
			WHERE coin_symbol = ? ORDER BY days, calculated_at DESC`, symbol).
		Scan(&rows).Error
	return rows, err
}

// MovingAveragesCleanup 清理30天前的旧数据
func (d *MarketDao) MovingAveragesCleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -30)
	return d.db.WithContext(ctx).
		Where("calculated_at < ?", cutoff).
		Delete(&entity.MovingAverage{}).Error
}
