package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
}

var teamCities = []string{
	"广州", "深圳", "珠海", "佛山", "东莞", "中山", "惠州", "汕头",
	"湛江", "江门", "肇庆", "韶关", "清远", "梅州", "茂名", "阳江",
}
var teamMascots = []string{
	"猛虎", "雄鹰", "飞龙", "骏马", "海豚", "猎豹", "雄狮", "火凤",
	"蛟龙", "苍狼", "银狐", "金雕",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleReferee,
	domain.RoleOrganizer,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

// GenerateTeamShortName 取队名每个汉字拼音的首字母作为简称，非汉字部分原样保留
func GenerateTeamShortName(name string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.FirstLetter
	args.Fallback = func(r rune, a pinyin.Args) []string {
		return []string{string(r)}
	}

	var sb strings.Builder
	for _, py := range pinyin.Pinyin(name, args) {
		if len(py) > 0 {
			sb.WriteString(py[0])
		}
	}
	return strings.ToUpper(strings.ReplaceAll(sb.String(), " ", ""))
}

func GenerateRandomTeamName() string {
	city := teamCities[rand.Intn(len(teamCities))]
	mascot := teamMascots[rand.Intn(len(teamMascots))]
	return city + mascot
}

// GenerateGroupName 返回第 i 个组的组名，例如 A、B、...、Z、AA
func GenerateGroupName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}

// GenerateTeams 生成 nTeams 支队伍并尽量平均地分到 nGroups 个组中，ID 从 1 开始
func GenerateTeams(tournamentID int64, nTeams int, nGroups int) []*domain.Team {
	if nGroups < 1 {
		nGroups = 1
	}

	teams := make([]*domain.Team, nTeams)
	for i := range teams {
		name := fmt.Sprintf("队伍%d", i+1)
		teams[i] = &domain.Team{
			ID:           int64(i + 1),
			TournamentID: tournamentID,
			Name:         name,
			ShortName:    GenerateTeamShortName(name),
			Group:        GenerateGroupName(i % nGroups),
		}
	}
	return teams
}

// GeneratePlaygrounds 生成 n 个场地，ID 从 1 开始
func GeneratePlaygrounds(tournamentID int64, n int) []*domain.Playground {
	playgrounds := make([]*domain.Playground, n)
	for i := range playgrounds {
		playgrounds[i] = &domain.Playground{
			ID:           int64(i + 1),
			TournamentID: tournamentID,
			Name:         fmt.Sprintf("%d 号场", i+1),
		}
	}
	return playgrounds
}

// GenerateRandomTournament 随机生成一个赛事，以及其中的队伍和场地（均未写入数据库）
func GenerateRandomTournament() (*domain.Tournament, []*domain.Team, []*domain.Playground) {
	t := &domain.Tournament{
		Name:        fmt.Sprintf("%s杯%d", teamCities[rand.Intn(len(teamCities))], rand.Intn(1000)),
		Description: "随机生成的测试赛事",
		StartTime:   time.Now().Add(time.Hour * 24 * time.Duration(rand.Intn(30)+1)),
	}

	nGroups := rand.Intn(3) + 1
	nTeams := nGroups * (rand.Intn(4) + 3)
	usedNames := make(map[string]bool)

	teams := make([]*domain.Team, 0, nTeams)
	for i := 0; i < nTeams; i++ {
		name := GenerateRandomTeamName()
		for usedNames[name] {
			name = GenerateRandomTeamName() + fmt.Sprint(i)
		}
		usedNames[name] = true

		teams = append(teams, &domain.Team{
			Name:      name,
			ShortName: GenerateTeamShortName(name),
			Skill:     int32(rand.Intn(10) + 1),
			Group:     GenerateGroupName(i % nGroups),
		})
	}

	playgrounds := GeneratePlaygrounds(0, rand.Intn(4)+1)
	for _, pg := range playgrounds {
		pg.ID = 0
	}

	return t, teams, playgrounds
}
