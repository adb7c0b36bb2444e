package router

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xiexing/askhub/internal/ai"
	"github.com/xiexing/askhub/internal/model"
	"github.com/xiexing/askhub/internal/tool"
)

var (
	tempRangeRe  = regexp.MustCompile(`温度(-?\d+)~(-?\d+)℃`)
	tempSingleRe = regexp.MustCompile(`温度(-?\d+)℃`)
	windLevelRe  = regexp.MustCompile(`<(\d+)级`)
)

// conditionOrder is the scan order for condition keywords in the tool's
// free text.
var conditionOrder = []string{"晴", "阴", "多云", "雨", "雪"}

// weatherFlow dispatches the weather tool and assembles the human-readable
// answer. The tool output is free text, so temperature, condition and wind
// come out of pattern extraction; fields the patterns miss degrade to
// "未知" instead of failing the request.
func (r *Router) weatherFlow(ctx context.Context, query string, params *WeatherParams) model.Classification {
	logger := logutil.GetLogger(ctx)
	if params == nil {
		params = extractWeatherParams(query)
		if params == nil {
			return model.Classification{Kind: model.ClassError, Message: "无法解析天气查询参数"}
		}
	}
	if params.Date == "" {
		params.Date = tool.DateToday
	}

	weatherTool, ok := r.tools.Find(tool.WeatherToolName)
	if !ok {
		return model.Classification{Kind: model.ClassError, Message: "天气查询服务不可用"}
	}
	input := params.Location + "," + params.Date
	result, err := weatherTool.Invoke(ctx, input)
	if err != nil {
		logger.Error("weather tool failed", zap.Error(err))
		return model.Classification{Kind: model.ClassError, Message: fmt.Sprintf("天气查询失败: %v", err)}
	}

	report := parseWeatherText(result)
	if report.unparsed() {
		// the tool returned text the patterns don't cover, let the model
		// answer from the raw result instead of reporting 未知 everywhere
		summary, err := r.manager.Generate(ctx, ai.GenerateRequest{
			Mode:  ai.ModeToolSummary,
			Query: ai.BuildToolSummary(query, tool.WeatherToolName, result),
		})
		if err != nil {
			logger.Warn("tool result summary failed", zap.Error(err))
		} else {
			return model.Classification{
				Kind:   model.ClassTool,
				Tool:   tool.WeatherToolName,
				Params: input,
				Text:   summary,
			}
		}
	}
	tip := r.weatherTip(ctx, params.Location, report)

	text := fmt.Sprintf("%s，%s天气%s，气温%s℃，风力%s级。",
		dateDescription(params.Date), params.Location, report.Condition, report.Temp, report.Wind)
	if tip != "" {
		text += "\n\n温馨提示：" + tip
	}
	return model.Classification{
		Kind:   model.ClassTool,
		Tool:   tool.WeatherToolName,
		Params: input,
		Text:   text,
	}
}

type weatherReport struct {
	Temp      string
	Condition string
	Wind      string
}

func (w weatherReport) unparsed() bool {
	return w.Temp == "未知" && w.Condition == "未知" && w.Wind == "未知"
}

func parseWeatherText(result string) weatherReport {
	report := weatherReport{Temp: "未知", Condition: "未知", Wind: "未知"}
	if m := tempRangeRe.FindStringSubmatch(result); m != nil {
		report.Temp = m[1] + "~" + m[2]
	} else if m := tempSingleRe.FindStringSubmatch(result); m != nil {
		report.Temp = m[1]
	}
	for _, cond := range conditionOrder {
		if strings.Contains(result, cond) {
			report.Condition = cond
			break
		}
	}
	if m := windLevelRe.FindStringSubmatch(result); m != nil {
		report.Wind = m[1]
	}
	return report
}

func (r *Router) weatherTip(ctx context.Context, location string, report weatherReport) string {
	prompt := fmt.Sprintf("根据%s的天气状况（%s，气温%s℃，风力%s级），给出一句温馨提示。要简短自然，不要重复天气相关信息，可以用emoji表情显得更加亲切。",
		location, report.Condition, report.Temp, report.Wind)
	tip, err := r.manager.Generate(ctx, ai.GenerateRequest{Mode: ai.ModeTip, Query: prompt})
	if err != nil {
		logutil.GetLogger(ctx).Warn("weather tip generation failed", zap.Error(err))
		return ""
	}
	return tip
}

// extractWeatherParams scans the query for a supported city and a relative
// date token. Cities are checked in sorted order for a deterministic pick
// when several appear.
func extractWeatherParams(query string) *WeatherParams {
	var location string
	cities := make([]string, 0, len(tool.CityCodes))
	for city := range tool.CityCodes {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	for _, city := range cities {
		if strings.Contains(query, city) {
			location = city
			break
		}
	}
	if location == "" {
		return nil
	}
	date := tool.DateToday
	if strings.Contains(query, "后天") {
		date = tool.DateAfterTomorrow
	} else if strings.Contains(query, "明天") {
		date = tool.DateTomorrow
	}
	return &WeatherParams{Location: location, Date: date}
}

func dateDescription(date string) string {
	now := time.Now()
	switch date {
	case tool.DateTomorrow:
		return "明天是" + now.AddDate(0, 0, 1).Format("2006年01月02日")
	case tool.DateAfterTomorrow:
		return "后天是" + now.AddDate(0, 0, 2).Format("2006年01月02日")
	default:
		return "今天是" + now.Format("2006年01月02日")
	}
}
