package models

type Genre struct {
	ID   int64  `gorm:"primaryKey;comment:外部类型ID"`
	Name string `gorm:"type:varchar(50);not null;comment:类型名称"`
}

func (Genre) TableName() string {
	return "genres"
}
