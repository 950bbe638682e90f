package autoload

import (
	configx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/pkg/config"
	logx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
