package models

import (
	"github.com/shopspring/decimal"
)

const (
	ImageTypeBackdrop = "backdrop"
	ImageTypeLogo     = "logo"
	ImageTypePoster   = "poster"
)

type Image struct {
	ID          uint             `gorm:"primaryKey;autoIncrement;comment:内部自增ID"`
	MovieID     uint             `gorm:"not null;uniqueIndex:ux_images_movie_type_path,priority:1;comment:电影内部ID"`
	Type        string           `gorm:"type:varchar(10);not null;uniqueIndex:ux_images_movie_type_path,priority:2;comment:图片类型"`
	FilePath    string           `gorm:"type:varchar(255);not null;uniqueIndex:ux_images_movie_type_path,priority:3;comment:文件路径"`
	AspectRatio *decimal.Decimal `gorm:"type:numeric(5,3);comment:宽高比"`
	Height      *int             `gorm:"comment:高度"`
	Width       *int             `gorm:"comment:宽度"`
	VoteAverage *decimal.Decimal `gorm:"type:numeric(3,1);comment:平均评分"`
	VoteCount   int              `gorm:"not null;default:0;comment:评分数量"`
	ISO6391     *string          `gorm:"column:iso_639_1;type:varchar(10);comment:语言代码"`
	Movie       *Movie           `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
}

func (Image) TableName() string {
	return "images"
}
