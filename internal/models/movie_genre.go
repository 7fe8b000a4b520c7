package models

type MovieGenre struct {
	MovieID uint   `gorm:"primaryKey;comment:电影内部ID"`
	GenreID int64  `gorm:"primaryKey;comment:类型ID"`
	Movie   *Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
	Genre   *Genre `gorm:"foreignKey:GenreID;constraint:OnDelete:CASCADE"`
}

func (MovieGenre) TableName() string {
	return "movie_genres"
}
