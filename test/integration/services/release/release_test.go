package release

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plutusflow/client-sdk-go/script"
	"github.com/plutusflow/client-sdk-go/services"
	"github.com/plutusflow/client-sdk-go/services/release"
	"github.com/plutusflow/client-sdk-go/test/integration"
)

// newTestService 创建连接 devnet 的条件释放服务
func newTestService(t *testing.T) (release.Service, *integration.TestEnv) {
	t.Helper()
	env := integration.SetupTestEnv(t)

	cfg := services.DefaultConfig()
	cfg.ConfirmInterval = integration.TransactionConfirmInterval
	cfg.ConfirmAttempts = integration.TransactionConfirmAttempts

	svc := release.NewServiceWithConfig(env.Ledger, env.Script, cfg, env.Wallet)
	return svc, env
}

// TestRelease_FixedValue 固定值条件：错误见证被拒绝，正确见证释放成功
func TestRelease_FixedValue(t *testing.T) {
	svc, env := newTestService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	// 1. 锁定 50 ADA，datum 记录 42
	lockResult, err := svc.Lock(ctx, &release.LockRequest{
		Amount:    50000000,
		Condition: script.FixedCondition(42),
	})
	require.NoError(t, err, "锁定失败")
	require.NotEmpty(t, lockResult.TxHash, "交易哈希为空")

	integration.WaitForTransaction(t, env.Ledger, lockResult.TxHash)

	// 2. 查找锁定输出
	findResult, err := svc.FindReleasable(ctx, &release.FindRequest{
		Matcher: release.MatchFixed(42),
	})
	require.NoError(t, err, "查找失败")
	require.True(t, findResult.Found, "未找到锁定输出")
	assert.Equal(t, uint64(50000000), findResult.Output.Value)

	// 3. 错误的见证：节点拒绝，锁定输出不受影响
	_, err = svc.Release(ctx, &release.ReleaseRequest{
		Output:  findResult.Output,
		Witness: 41,
	})
	var rejected *release.SubmissionRejectedError
	require.ErrorAs(t, err, &rejected, "错误见证应被拒绝")
	t.Logf("拒绝原因: %s", rejected.Reason)

	// 4. 正确的见证：释放成功
	releaseResult, err := svc.Release(ctx, &release.ReleaseRequest{
		Output:  findResult.Output,
		Witness: 42,
	})
	require.NoError(t, err, "释放失败")
	require.NoError(t, svc.WaitForConfirmation(ctx, releaseResult.TxHash), "等待确认失败")

	// 5. 已消费的输出不会再被找到
	after, err := svc.FindReleasable(ctx, &release.FindRequest{
		Matcher: release.MatchFixed(42),
	})
	require.NoError(t, err, "查找失败")
	assert.False(t, after.Found, "已消费的输出不应再被找到")
}

// TestRelease_TimeLockedGift 时间锁条件：到期前无法领取，到期后受益人领取成功
func TestRelease_TimeLockedGift(t *testing.T) {
	svc, env := newTestService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// 1. 锁定 10 ADA 给本钱包，60 秒后到期
	deadline := time.Now().Add(60 * time.Second)
	lockResult, err := svc.Lock(ctx, &release.LockRequest{
		Amount:    10000000,
		Condition: script.TimeLockedCondition(env.Wallet.KeyHash(), deadline),
	})
	require.NoError(t, err, "锁定失败")

	integration.WaitForTransaction(t, env.Ledger, lockResult.TxHash)

	// 2. 到期前的领取尝试：不发交易，直接失败
	_, err = svc.Release(ctx, &release.ReleaseRequest{
		Output: lockResult.Output,
	})
	require.True(t, errors.Is(err, release.ErrConditionNotYetMet), "到期前应返回 ErrConditionNotYetMet，实际: %v", err)

	// 3. 等链上时间越过到期点后领取
	integration.WaitUntilChainTime(t, env.Ledger, deadline)

	releaseResult, err := svc.Release(ctx, &release.ReleaseRequest{
		Output: lockResult.Output,
	})
	require.NoError(t, err, "到期后领取失败")
	assert.Equal(t, uint64(10000000), releaseResult.Amount)

	require.NoError(t, svc.WaitForConfirmation(ctx, releaseResult.TxHash), "等待确认失败")
}

// TestRelease_SkipsForeignDatum 脚本地址下无法识别的 datum 被跳过
func TestRelease_SkipsForeignDatum(t *testing.T) {
	svc, env := newTestService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	// 锁定一个可识别的输出
	lockResult, err := svc.Lock(ctx, &release.LockRequest{
		Amount:    5000000,
		Condition: script.FixedCondition(7),
	})
	require.NoError(t, err, "锁定失败")
	integration.WaitForTransaction(t, env.Ledger, lockResult.TxHash)

	// 查找只返回可识别的输出，其余计入 Skipped
	findResult, err := svc.FindReleasable(ctx, &release.FindRequest{
		Matcher: release.MatchFixed(7),
	})
	require.NoError(t, err, "查找失败")
	require.True(t, findResult.Found, "未找到锁定输出")
	assert.Equal(t, script.ConditionFixed, findResult.Output.Condition.Kind)
	t.Logf("跳过 %d 个无法识别的输出", findResult.Skipped)

	// 清理：释放锁定的输出
	releaseResult, err := svc.Release(ctx, &release.ReleaseRequest{
		Output:  findResult.Output,
		Witness: 7,
	})
	require.NoError(t, err, "释放失败")
	require.NoError(t, svc.WaitForConfirmation(ctx, releaseResult.TxHash), "等待确认失败")
}
