package models

// Solution is a canned problem/solution pair. Rows are loaded by the seed
// command and only read through the API.
type Solution struct {
	ID       uint   `gorm:"primaryKey" json:"id" yaml:"-"`
	Problem  string `gorm:"type:text" json:"problem" yaml:"problem"`
	Solution string `gorm:"type:text" json:"solution" yaml:"solution"`
	Category string `json:"category" yaml:"category"`
}
