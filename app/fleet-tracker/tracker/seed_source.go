package tracker

import (
	"fmt"
	logger "log"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/Biswayan2006/SIH2025-sub001/foundation/httpclient"
	"github.com/jmoiron/sqlx"
)

//SeedSource names where the starting fleet and route catalog come from. The first one set wins:
//the database, then Url, then File. With none set the built-in demonstration seed is used
type SeedSource struct {
	Url          string
	File         string
	FetchTimeout time.Duration
}

//LoadSeed retrieves the starting fleet and route catalog from db when not nil, otherwise from source
func LoadSeed(log *logger.Logger, db *sqlx.DB, source SeedSource) (*bus.Seed, error) {
	switch {
	case db != nil:
		log.Printf("Loading fleet from database")
		seed, err := bus.LoadSeed(db)
		if err != nil {
			return nil, fmt.Errorf("loading seed from database: %w", err)
		}
		return seed, nil
	case source.Url != "":
		log.Printf("Loading fleet from %s", source.Url)
		fetched, err := httpclient.FetchRemoteFile(source.Url, source.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("downloading seed: %w", err)
		}
		log.Printf("Downloaded %d bytes, etag:%q", len(fetched.Contents), fetched.RemoteFileInfo.ETag)
		return bus.ParseSeed(fetched.Contents)
	case source.File != "":
		log.Printf("Loading fleet from %s", source.File)
		return bus.LoadSeedFile(source.File)
	}
	log.Printf("Loading demonstration fleet")
	return bus.DemoSeed()
}
