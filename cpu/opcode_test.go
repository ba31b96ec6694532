package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodesTable(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(int(INS_LD_VX_MEM)+1, len(Opcodes))

	for n, info := range Opcodes {
		assert.Equal(Instruction(n), info.Instruction, info.Name)
		if info.Instruction == INS_INVALID {
			continue
		}
		assert.Equal(info.Value, info.Value&info.Mask, info.Name)
		assert.Equal(info.Instruction, Code(info.Value).Decode(), info.Name)
	}
}

func TestCodeFields(t *testing.T) {
	assert := assert.New(t)

	code := Code(0xd12f)
	assert.Equal(uint8(0xd), code.Family())
	assert.Equal(uint8(0x1), code.X())
	assert.Equal(uint8(0x2), code.Y())
	assert.Equal(uint8(0xf), code.N())
	assert.Equal(uint8(0x2f), code.KK())
	assert.Equal(uint16(0x12f), code.NNN())
}

func TestCodeMake(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Code(0x00e0), MakeCode(INS_CLS))
	assert.Equal(Code(0x2abc), MakeCodeNNN(INS_CALL, 0xabc))
	assert.Equal(Code(0xe59e), MakeCodeX(INS_SKP, 5))
	assert.Equal(Code(0x6a42), MakeCodeXKK(INS_LD_BYTE, 0xa, 0x42))
	assert.Equal(Code(0x8ab4), MakeCodeXY(INS_ADD_REG, 0xa, 0xb))
	assert.Equal(Code(0xd015), MakeCodeXYN(INS_DRW, 0, 1, 5))
}

func TestCodeDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		ins  Instruction
		text string
	}){
		{0x00e0, INS_CLS, "cls"},
		{0x00ee, INS_RET, "ret"},
		{0x1300, INS_JP, "jp 0x300"},
		{0x2abc, INS_CALL, "call 0xabc"},
		{0x3a42, INS_SE_BYTE, "se va, 0x42"},
		{0x4a42, INS_SNE_BYTE, "sne va, 0x42"},
		{0x5ab0, INS_SE_REG, "se va, vb"},
		{0x612a, INS_LD_BYTE, "ld v1, 0x2a"},
		{0x7101, INS_ADD_BYTE, "add v1, 0x01"},
		{0x8120, INS_LD_REG, "ld v1, v2"},
		{0x8121, INS_OR, "or v1, v2"},
		{0x8122, INS_AND, "and v1, v2"},
		{0x8123, INS_XOR, "xor v1, v2"},
		{0x8124, INS_ADD_REG, "add v1, v2"},
		{0x8125, INS_SUB, "sub v1, v2"},
		{0x8126, INS_SHR, "shr v1, v2"},
		{0x8127, INS_SUBN, "subn v1, v2"},
		{0x812e, INS_SHL, "shl v1, v2"},
		{0x9120, INS_SNE_REG, "sne v1, v2"},
		{0xa123, INS_LD_I, "ld i, 0x123"},
		{0xb123, INS_JP_V0, "jp v0, 0x123"},
		{0xc10f, INS_RND, "rnd v1, 0x0f"},
		{0xd015, INS_DRW, "drw v0, v1, 5"},
		{0xe19e, INS_SKP, "skp v1"},
		{0xe1a1, INS_SKNP, "sknp v1"},
		{0xf107, INS_LD_VX_DT, "ld v1, dt"},
		{0xf10a, INS_LD_VX_K, "ld v1, k"},
		{0xf115, INS_LD_DT_VX, "ld dt, v1"},
		{0xf118, INS_LD_ST_VX, "ld st, v1"},
		{0xf11e, INS_ADD_I, "add i, v1"},
		{0xf129, INS_LD_F, "ld f, v1"},
		{0xf133, INS_LD_B, "ld b, v1"},
		{0xf155, INS_LD_MEM_VX, "ld [i], v1"},
		{0xf165, INS_LD_VX_MEM, "ld v1, [i]"},
		{0xffff, INS_INVALID, ".word 0xffff"},
		{0x0123, INS_INVALID, ".word 0x0123"},
		{0x5121, INS_INVALID, ".word 0x5121"},
		{0x8128, INS_INVALID, ".word 0x8128"},
	}

	for _, entry := range table {
		assert.Equal(entry.ins, entry.code.Decode(), entry.text)
		assert.Equal(entry.text, entry.code.String())
	}
}

func TestInstructionString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("drw", INS_DRW.String())
	assert.Equal(".word", INS_INVALID.String())
	assert.Equal("Instruction(99)", Instruction(99).String())
	assert.Equal(INS_INVALID, Instruction(-1).Info().Instruction)
}
