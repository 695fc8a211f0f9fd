package main

import (
	"github.com/madelynarsenault/portfolio/cmd"
	"github.com/madelynarsenault/portfolio/internal/model"
)

var site model.SiteData

func main() {
	cmd.Execute(&site)
}
