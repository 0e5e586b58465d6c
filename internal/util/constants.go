package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 课时视频上传允许的扩展名
var (
	AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"}
)
