package entity

// WasteType is a category of material with disposal guidance.
type WasteType struct {
	ID           int64  `db:"id" json:"id,string"`
	Name         string `db:"name" json:"name"`
	Description  string `db:"description" json:"description"`
	Color        string `db:"color" json:"color"`
	IconName     string `db:"icon_name" json:"iconName"`
	DisposalInfo string `db:"disposal_info" json:"disposalInfo"`
	Examples     string `db:"examples" json:"examples"`
}

// NewWasteType creates a WasteType with the given id.
func NewWasteType(id int64, name, description, color, iconName, disposalInfo, examples string) *WasteType {
	return &WasteType{ID: id, Name: name, Description: description, Color: color, IconName: iconName, DisposalInfo: disposalInfo, Examples: examples}
}
