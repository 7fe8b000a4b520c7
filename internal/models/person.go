package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Person struct {
	ID                 int64            `gorm:"primaryKey;comment:外部人物ID"`
	Name               string           `gorm:"type:varchar(255);not null;comment:姓名"`
	OriginalName       *string          `gorm:"type:varchar(255);comment:原始姓名"`
	Gender             int              `gorm:"not null;default:0;comment:性别代码"`
	Popularity         *decimal.Decimal `gorm:"type:numeric(8,3);comment:人气值"`
	ProfilePath        *string          `gorm:"type:varchar(255);comment:头像路径"`
	KnownForDepartment *string          `gorm:"type:varchar(100);comment:代表部门"`
	LastSeenAt         time.Time        `gorm:"type:timestamptz;not null;comment:最近同步时间"`
	RawJSON            datatypes.JSON   `gorm:"type:jsonb;not null;comment:原始数据"`
}

func (Person) TableName() string {
	return "persons"
}
