package models

const (
	CreditKindCast = "cast"
	CreditKindCrew = "crew"
)

// MovieCredit unifies cast and crew lines in one table. Cast rows carry
// cast_order/character_name, crew rows carry department/job; the other
// pair stays NULL.
type MovieCredit struct {
	CreditID   string  `gorm:"primaryKey;type:varchar(50);comment:外部演职员ID"`
	MovieID    uint    `gorm:"not null;index;comment:电影内部ID"`
	PersonID   int64   `gorm:"not null;index;comment:外部人物ID"`
	Kind       string  `gorm:"type:varchar(10);not null;comment:演职员类型"`
	CastOrder  *int    `gorm:"comment:出演顺序"`
	Character  *string `gorm:"column:character_name;type:varchar(255);comment:角色名"`
	Department *string `gorm:"type:varchar(100);comment:部门"`
	Job        *string `gorm:"type:varchar(100);comment:职位"`
	Movie      *Movie  `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
	Person     *Person `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE"`
}

func (MovieCredit) TableName() string {
	return "movie_credits"
}
