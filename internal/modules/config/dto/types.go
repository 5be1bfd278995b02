package dto

type ConfigOutput struct {
	Name       string
	ReadTime   int
	ThinkTime  int
	CodeTime   int
	SearchTime int
	Created    bool
}

type InitInput struct {
	Force bool
}
