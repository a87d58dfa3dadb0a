package main

import (
	"context"
	"flag"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/dropzone-protocol/dropzone/bridge"
	"github.com/dropzone-protocol/dropzone/drop"
	"github.com/dropzone-protocol/dropzone/store"
	"github.com/joho/godotenv"
)

type dataStore interface {
	bridge.Store
	drop.Store
	Close() error
}

func main() {
	ctx := context.Background()

	bp := flag.String("d", "~/.dropzone/data", "database directory path")
	cp := flag.String("c", "~/.dropzone/config.toml", "configuration file path")
	flag.Parse()

	godotenv.Load(".env")

	if strings.HasPrefix(*cp, "~/") {
		usr, _ := user.Current()
		*cp = filepath.Join(usr.HomeDir, (*cp)[2:])
	}
	conf, err := bridge.Setup(*cp)
	if err != nil {
		panic(err)
	}
	if v := os.Getenv("DROPZONE_REDIS_URL"); v != "" {
		conf.Store.Driver = "redis"
		conf.Store.Redis = v
	}
	if v := os.Getenv("DROPZONE_BRIDGE_TOKEN"); v != "" {
		conf.App.AccessToken = v
	}

	var db dataStore
	switch conf.Store.Driver {
	case "", "badger":
		if strings.HasPrefix(*bp, "~/") {
			usr, _ := user.Current()
			*bp = filepath.Join(usr.HomeDir, (*bp)[2:])
		}
		db, err = store.OpenBadger(ctx, *bp)
	case "redis":
		db, err = store.OpenRedis(ctx, conf.Store.Redis)
	default:
		panic(conf.Store.Driver)
	}
	if err != nil {
		panic(err)
	}
	defer db.Close()

	client := bridge.NewRestClient(conf.App.BridgeURL, conf.App.AccessToken)
	group, err := bridge.BuildGroup(ctx, db, client, conf)
	if err != nil {
		panic(err)
	}

	dz := drop.NewDropZone(conf.App.AccountId, db, group)
	group.SetResolver(dz)
	group.AddWorker(drop.NewRegistrarWorker(dz, group))
	group.Run(ctx)
}
