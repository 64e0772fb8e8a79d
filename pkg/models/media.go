package models

import (
	"path/filepath"
	"strings"
)

// MediaClass is a coarse content class derived from the file extension
type MediaClass string

const (
	MediaPhoto MediaClass = "photo"
	MediaMusic MediaClass = "music"
	MediaVideo MediaClass = "video"
	MediaOther MediaClass = "other"
)

// MediaClasses lists all classes in display order
var MediaClasses = []MediaClass{MediaPhoto, MediaMusic, MediaVideo, MediaOther}

var mediaExtensions = map[string]MediaClass{
	"jpg": MediaPhoto, "jpeg": MediaPhoto, "png": MediaPhoto, "gif": MediaPhoto, "bmp": MediaPhoto,
	"tiff": MediaPhoto, "webp": MediaPhoto, "heic": MediaPhoto, "heif": MediaPhoto,

	"mp3": MediaMusic, "flac": MediaMusic, "wav": MediaMusic, "aac": MediaMusic,
	"m4a": MediaMusic, "ogg": MediaMusic, "wma": MediaMusic, "opus": MediaMusic,

	"mp4": MediaVideo, "mkv": MediaVideo, "avi": MediaVideo, "mov": MediaVideo, "wmv": MediaVideo,
	"flv": MediaVideo, "webm": MediaVideo, "m4v": MediaVideo, "mpeg": MediaVideo, "mpg": MediaVideo,
}

// GetExtension returns the lower-case file extension without dot
func GetExtension(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	return strings.ToLower(ext)
}

// MediaClassOf classifies a file name by its extension
func MediaClassOf(name string) MediaClass {
	if class, ok := mediaExtensions[GetExtension(name)]; ok {
		return class
	}
	return MediaOther
}
