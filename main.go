package main

import (
	"flag"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"mbr/bed"
	"mbr/server"
)

var confPath = flag.String("conf", "conf/config.ini", "path to the configuration file")

func main() {
	flag.Parse()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	addr := ":9000"
	if f, err := ini.Load(*confPath); err == nil {
		addr = f.Section("server").Key("addr").MustString(addr)
	}

	sc, err := bed.LoadScenario(*confPath)
	if err != nil {
		log.WithFields(log.Fields{"path": *confPath, "error": err}).
			Warn("config not loaded, running the reference scenario")
	}

	if err := server.New(addr, sc).Serve(); err != nil {
		log.WithField("error", err).Fatal("server stopped")
	}
}
