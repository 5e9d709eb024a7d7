package config

import "time"

const (
	DefaultListURL = "https://degra.wi.pb.edu.pl/rozklady/rozklad.php?page=nau"
	defaultTimeout = 15 * time.Second
)

func Default() Config {
	return Config{
		Source: Source{
			ListURL: DefaultListURL,
			Timeout: "15s",
		},
		Cache: Cache{
			File:           DefaultCacheFile(),
			TeacherListTTL: "1d",
			TeacherTTL:     "1h",
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}
