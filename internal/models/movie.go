package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Movie struct {
	ID               uint             `gorm:"primaryKey;autoIncrement;comment:内部自增ID"`
	MovieID          int64            `gorm:"uniqueIndex;not null;comment:外部电影ID"`
	Title            string           `gorm:"type:varchar(255);not null;comment:标题"`
	OriginalTitle    *string          `gorm:"type:varchar(255);comment:原始标题"`
	OriginalLanguage *string          `gorm:"type:varchar(10);comment:原始语言"`
	Overview         *string          `gorm:"type:text;comment:剧情简介"`
	Adult            bool             `gorm:"not null;default:false;comment:是否成人内容"`
	Video            bool             `gorm:"not null;default:false;comment:是否视频条目"`
	BackdropPath     *string          `gorm:"type:varchar(255);comment:背景图路径"`
	PosterPath       *string          `gorm:"type:varchar(255);comment:海报路径"`
	ReleaseDate      *time.Time       `gorm:"type:date;comment:上映日期"`
	Popularity       *decimal.Decimal `gorm:"type:numeric(8,3);index;comment:人气值"`
	VoteAverage      *decimal.Decimal `gorm:"type:numeric(3,1);comment:平均评分"`
	VoteCount        int              `gorm:"not null;default:0;comment:评分数量"`
	LastSeenAt       time.Time        `gorm:"type:timestamptz;not null;comment:最近同步时间"`
	RawJSON          datatypes.JSON   `gorm:"type:jsonb;not null;comment:原始数据"`
}

func (Movie) TableName() string {
	return "movies"
}
