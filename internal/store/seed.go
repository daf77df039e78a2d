package store

import (
	"time"

	"github.com/jonathan/job-tracker/internal/types"
)

// Seed is the initial content of a fresh store.
type Seed struct {
	Folders  []types.Folder
	Jobs     []types.JobRecord
	Messages []types.ChatMessage
}

func (s *Store) applySeed(seed Seed) {
	s.folders = append([]types.Folder{}, seed.Folders...)
	s.jobs = make([]*types.JobRecord, 0, len(seed.Jobs))
	for i := range seed.Jobs {
		j := seed.Jobs[i].Clone()
		ensureLists(j)
		s.jobs = append(s.jobs, j)
	}
	s.messages = cloneMessages(seed.Messages)
	s.selectedFolderID = ""
	if len(s.folders) > 0 {
		s.selectedFolderID = s.folders[0].ID
	}
	s.recountLocked()
}

func isoDaysFrom(now time.Time, days int) string {
	return now.Add(time.Duration(days) * day).UTC().Format("2006-01-02T15:04:05.000Z")
}

func millisDaysFrom(now time.Time, days int) int64 {
	return now.Add(time.Duration(days) * day).UnixMilli()
}

// DefaultSeed returns the demo data: three folders, seven jobs with
// deadlines relative to now, and a short sample transcript.
func DefaultSeed(now time.Time) Seed {
	folders := []types.Folder{
		{ID: "folder-1", Name: "互联网大厂", Color: types.ColorBlue},
		{ID: "folder-2", Name: "外企", Color: types.ColorMint},
		{ID: "folder-3", Name: "国企", Color: types.ColorPeach},
	}

	jobs := []types.JobRecord{
		{
			ID:       "job-1",
			FolderID: "folder-1",
			Company:  types.Company{Name: "字节跳动", Type: types.CompanyInternet},
			Position: types.Position{
				Title: "高级前端工程师", Salary: "35k-50k", Location: "北京·海淀",
				Deadline: isoDaysFrom(now, 5), Status: types.StatusInProgress,
				Education: "本科及以上", Experience: "5年以上",
			},
			AIAnalysis: types.Analysis{
				Responsibilities: []string{
					"负责抖音电商核心页面开发与性能优化",
					"参与前端架构设计，推动工程化建设",
					"指导初中级工程师，进行代码评审",
					"与产品、设计紧密配合，保证交付质量",
				},
				Requirements: []string{
					"5年以上前端开发经验，精通 React/Vue",
					"熟悉 Node.js，有全栈开发经验优先",
					"具备大型项目性能优化经验",
					"计算机相关专业本科及以上学历",
				},
				Suggestions: types.Suggestions{
					Resume:      "突出你在性能优化方面的具体数据，如首屏加载时间减少X%、转化率提升Y%等量化指标。强调React生态深度使用经验。",
					Interview:   "重点准备浏览器渲染原理、React Fiber架构、微前端方案。手写Promise、debounce/throttle是必考。",
					Negotiation: "字节总包通常包含基础工资+绩效+期权，期权部分可以谈判。年终奖通常3-6个月。",
				},
			},
			CreatedAt:   millisDaysFrom(now, -7),
			ApplyLink:   "https://jobs.bytedance.com",
			HasReminder: true,
		},
		{
			ID:       "job-2",
			FolderID: "folder-1",
			Company:  types.Company{Name: "阿里巴巴", Type: types.CompanyInternet},
			Position: types.Position{
				Title: "前端开发专家", Salary: "40k-60k·16薪", Location: "杭州·余杭",
				Deadline: isoDaysFrom(now, 12), Status: types.StatusNew,
				Education: "本科及以上", Experience: "5年以上",
			},
			AIAnalysis: types.Analysis{
				Responsibilities: []string{
					"负责淘宝核心交易链路前端开发",
					"主导低代码平台建设",
					"前端性能监控与稳定性保障",
				},
				Requirements: []string{
					"精通 React，熟悉底层原理",
					"有大型电商项目经验",
					"熟悉 Webpack/Vite 等构建工具",
					"良好的跨团队协作能力",
				},
				Suggestions: types.Suggestions{
					Resume:      "强调电商相关经验，特别是交易、支付、订单等核心链路。阿里重视技术影响力，可提及开源贡献或技术博客。",
					Interview:   "阿里前端面试偏重工程化、架构设计。准备P7级别的系统设计题，如设计一个组件库或搭建平台。",
					Negotiation: "阿里职级体系明确，P7对应专家级别。总包构成：基本工资+股票+年终奖，年终奖通常4个月。",
				},
			},
			CreatedAt:   millisDaysFrom(now, -14),
			ApplyLink:   "https://talent.alibaba.com",
			HasReminder: true,
		},
		{
			ID:       "job-3",
			FolderID: "folder-1",
			Company:  types.Company{Name: "腾讯", Type: types.CompanyInternet},
			Position: types.Position{
				Title: "Web前端开发", Salary: "30k-45k", Location: "深圳·南山",
				Deadline: isoDaysFrom(now, 2), Status: types.StatusNew,
				Education: "本科及以上", Experience: "3年以上",
			},
			AIAnalysis: types.Analysis{
				Responsibilities: []string{
					"负责微信生态相关H5页面开发",
					"小程序性能优化与体验提升",
					"参与前端基础设施建设",
				},
				Requirements: []string{
					"3年以上前端经验，熟悉微信小程序",
					"扎实的JavaScript/CSS基础",
					"有移动端H5开发经验",
					"了解HTTP协议和浏览器原理",
				},
				Suggestions: types.Suggestions{
					Resume:      "突出微信生态相关经验，包括小程序、公众号H5。腾讯重视产品思维，可展示对产品细节的关注。",
					Interview:   "腾讯面试注重基础，CSS布局、JS闭包/原型链、浏览器缓存策略是重点。",
					Negotiation: "腾讯薪资结构：基础工资+绩效+股票+签字费。不同BG薪资差异较大，WXG、IEG通常较高。",
				},
			},
			CreatedAt:   millisDaysFrom(now, -3),
			ApplyLink:   "https://careers.tencent.com",
			HasReminder: true,
		},
		{
			ID:       "job-4",
			FolderID: "folder-2",
			Company:  types.Company{Name: "Microsoft", Type: types.CompanyForeign},
			Position: types.Position{
				Title: "Senior Frontend Engineer", Salary: "50k-70k·13薪", Location: "北京·中关村",
				Deadline: isoDaysFrom(now, 20), Status: types.StatusNew,
				Education: "本科及以上", Experience: "5年以上",
			},
			AIAnalysis: types.Analysis{
				Responsibilities: []string{
					"Build responsive web applications using React and TypeScript",
					"Collaborate with PM and designers to deliver high-quality products",
					"Mentor junior developers and conduct code reviews",
					"Drive frontend best practices and engineering excellence",
				},
				Requirements: []string{
					"5+ years of frontend development experience",
					"Strong proficiency in React, TypeScript, and modern CSS",
					"Experience with cloud services (Azure preferred)",
					"Excellent English communication skills",
				},
				Suggestions: types.Suggestions{
					Resume:      "Use STAR format to describe projects. Highlight cross-cultural collaboration experience. Include GitHub/StackOverflow profiles.",
					Interview:   "Microsoft interviews focus on problem-solving and system design. Prepare behavioral questions using STAR method.",
					Negotiation: "Microsoft offers competitive base salary with good WLB. Benefits include stock grants, bonus, and comprehensive insurance.",
				},
			},
			CreatedAt:   millisDaysFrom(now, -5),
			ApplyLink:   "https://careers.microsoft.com",
			HasReminder: true,
		},
		{
			ID:       "job-5",
			FolderID: "folder-2",
			Company:  types.Company{Name: "Shopee", Type: types.CompanyForeign},
			Position: types.Position{
				Title: "Frontend Engineer", Salary: "35k-50k·15薪", Location: "深圳·科技园",
				Deadline: isoDaysFrom(now, 8), Status: types.StatusNew,
				Education: "本科及以上", Experience: "3年以上",
			},
			AIAnalysis: types.Analysis{
				Responsibilities: []string{
					"Develop e-commerce platform features",
					"Optimize web performance and user experience",
					"Work closely with Singapore and regional teams",
				},
				Requirements: []string{
					"3+ years frontend experience",
					"Proficient in React and state management",
					"Experience with large-scale web applications",
					"Willing to travel to Singapore occasionally",
				},
				Suggestions: types.Suggestions{
					Resume:      "Highlight e-commerce domain knowledge. Shopee values candidates with regional/SEA market understanding.",
					Interview:   "Technical rounds include coding (algorithm + frontend), system design, and behavioral. Culture fit is important.",
					Negotiation: "Shopee offers competitive packages with stock options. Consider the travel requirements and work-life balance.",
				},
			},
			CreatedAt:   millisDaysFrom(now, -10),
			ApplyLink:   "https://careers.shopee.sg",
			HasReminder: true,
		},
		{
			ID:       "job-6",
			FolderID: "folder-3",
			Company:  types.Company{Name: "中国银行", Type: types.CompanyStateOwned},
			Position: types.Position{
				Title: "前端开发工程师", Salary: "25k-35k", Location: "北京·西城区",
				Deadline: isoDaysFrom(now, 1), Status: types.StatusNew,
				Education: "本科及以上", Experience: "3年以上",
			},
			AIAnalysis: types.Analysis{
				Responsibilities: []string{
					"负责手机银行APP内H5页面开发",
					"参与金融科技前端技术选型",
					"保障系统安全与合规要求",
				},
				Requirements: []string{
					"3年以上前端开发经验",
					"熟悉Vue或React框架",
					"了解金融安全相关知识",
					"党员优先，政治素质过硬",
				},
				Suggestions: types.Suggestions{
					Resume:      "强调稳定性和长期发展意愿。国企重视政治面貌，党员务必注明。突出安全合规意识。",
					Interview:   "技术面试相对基础，但可能有政治素养考察。准备对金融科技行业的理解。",
					Negotiation: "国企薪资相对透明，涨幅有限但稳定性高。关注福利：六险二金、补充医疗、食堂等。",
				},
			},
			CreatedAt:   millisDaysFrom(now, -2),
			ApplyLink:   "https://www.boc.cn",
			HasReminder: true,
		},
		{
			ID:       "job-7",
			FolderID: "folder-3",
			Company:  types.Company{Name: "中国移动", Type: types.CompanyStateOwned},
			Position: types.Position{
				Title: "Web前端开发", Salary: "20k-30k", Location: "北京·东城区",
				Status:    types.StatusRejected,
				Education: "本科及以上", Experience: "2年以上",
			},
			AIAnalysis: types.Analysis{
				Responsibilities: []string{
					"负责营业厅系统前端开发",
					"移动端H5页面适配与优化",
				},
				Requirements: []string{
					"2年以上前端经验",
					"熟悉HTML5/CSS3/JavaScript",
					"有运营商行业经验优先",
				},
				Suggestions: types.Suggestions{
					Resume:      "突出toB系统开发经验。国企偏好稳重、踏实的候选人。",
					Interview:   "面试流程较长，需耐心等待。技术问题偏向实际项目经验。",
					Negotiation: "国企薪资结构固定，可谈判空间小。",
				},
			},
			CreatedAt: millisDaysFrom(now, -20),
			ApplyLink: "https://www.10086.cn",
		},
	}

	messages := []types.ChatMessage{
		{
			ID:        "msg-1",
			Type:      types.MessageUser,
			Content:   "帮我分析一下这个职位：美团外卖事业部招高级前端，要求5年经验，负责外卖商家端核心页面，薪资30-45k",
			Timestamp: now.Add(-time.Hour).UnixMilli(),
		},
		{
			ID:      "msg-2",
			Type:    types.MessageAI,
			Content: "已为您分析该职位信息",
			Stage:   types.StageComplete,
			ParsedJob: &types.JobRecord{
				Company: types.Company{Name: "美团", Type: types.CompanyInternet},
				Position: types.Position{
					Title: "高级前端工程师", Salary: "30k-45k", Location: "北京",
					Deadline: isoDaysFrom(now, 14), Status: types.StatusNew,
					Education: "本科及以上", Experience: "5年以上",
				},
				AIAnalysis: types.Analysis{
					Responsibilities: []string{
						"负责外卖商家端核心页面开发与维护",
						"参与前端技术方案设计",
						"性能优化与用户体验提升",
					},
					Requirements: []string{
						"5年以上前端开发经验",
						"精通React/Vue等主流框架",
						"有大型toB项目经验",
					},
					Suggestions: types.Suggestions{
						Resume:      "突出toB业务经验，特别是商家端、后台管理系统。美团重视数据驱动，可展示AB测试、数据埋点经验。",
						Interview:   "美团面试注重算法和系统设计，准备中等难度LeetCode题。",
						Negotiation: "美团薪资结构：基本工资+绩效+股票，年终奖通常3-4个月。",
					},
				},
			},
			Timestamp: now.Add(-3500 * time.Second).UnixMilli(),
		},
	}

	return Seed{Folders: folders, Jobs: jobs, Messages: messages}
}
