package dto

type ExportOutput struct {
	Path    string
	Created bool
	Days    int
}
